// Package optimizer implements the adaptive performance optimizer: a
// baseline value is scaled by profile, task, and signal multipliers, and
// feedback from each run nudges the adaptation weights.
package optimizer

import (
	"encoding/json"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/hcm-labs/hcm/internal/analyze"
	"github.com/hcm-labs/hcm/internal/brain"
	"github.com/hcm-labs/hcm/internal/fault"
	"github.com/hcm-labs/hcm/internal/memory"
	"github.com/hcm-labs/hcm/internal/profile"
	"github.com/hcm-labs/hcm/internal/snapshot"
	"github.com/hcm-labs/hcm/internal/store"
	"github.com/hcm-labs/hcm/internal/weights"
)

// #region task-multipliers

// DefaultTaskMultiplier applies to task types without a table entry.
const DefaultTaskMultiplier = 1.15

// baseTaskMultipliers are carried constants per task label.
var baseTaskMultipliers = map[string]float64{
	"mining":  1.234,
	"ai":      1.18,
	"general": 1.15,
	"nuclear": 1.22,
}

// BaseTaskMultiplier returns the table entry or the default for unknown labels.
func BaseTaskMultiplier(taskType string) float64 {
	if m, ok := baseTaskMultipliers[taskType]; ok {
		return m
	}
	return DefaultTaskMultiplier
}

// #endregion task-multipliers

// #region config

// Config wires an Optimizer. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	UseRealData     bool
	LearningEnabled bool

	Memory     memory.Config
	PatternCap int
	Drift      profile.DriftConfig
	Adjust     weights.AdjustConfig

	// Rand seeds synthetic data generation; required when UseRealData is false.
	Rand *rand.Rand

	// Store is optional persistence. Store failures on the learn path are
	// logged, never propagated: persistence is advisory there.
	Store *store.Store
}

// DefaultConfig returns a real-data, learning-enabled configuration.
func DefaultConfig() Config {
	return Config{
		UseRealData:     true,
		LearningEnabled: true,
		Memory:          memory.DefaultConfig(),
		PatternCap:      512,
		Drift:           profile.DefaultDriftConfig(),
		Adjust:          weights.DefaultAdjustConfig(),
	}
}

// #endregion config

// #region optimizer

// Optimizer holds the signal set, derived profile, adaptation weights, and
// learning memory. It is synchronous and not safe for concurrent use; give
// each goroutine its own instance.
type Optimizer struct {
	config     Config
	data       brain.Data
	profile    profile.Profile
	weights    weights.Weights
	memory     *memory.Memory
	patterns   *analyze.DB
	iterations int
}

// New builds an optimizer from fixed or synthetic data and derives its
// profile.
func New(config Config) (*Optimizer, error) {
	var data brain.Data
	if config.UseRealData {
		data = brain.RealData()
	} else {
		if config.Rand == nil {
			return nil, fault.New(fault.InvalidArgument, "synthetic mode requires a random source")
		}
		data = brain.Synthetic(config.Rand)
	}

	o := &Optimizer{
		config:   config,
		data:     data,
		profile:  profile.Derive(data),
		weights:  weights.Default(),
		memory:   memory.New(config.Memory),
		patterns: analyze.NewDB(config.PatternCap),
	}
	log.Printf("[OPT] initialized: level=%s composite=%.4f real_data=%v",
		o.profile.Level, o.profile.Composite, config.UseRealData)
	return o, nil
}

// #endregion optimizer

// #region accessors

// Profile returns the current derived profile.
func (o *Optimizer) Profile() profile.Profile { return o.profile }

// Weights returns the current adaptation weights.
func (o *Optimizer) Weights() weights.Weights { return o.weights }

// Data returns the signal set in use.
func (o *Optimizer) Data() brain.Data { return o.data }

// Memory exposes the in-process learning memory.
func (o *Optimizer) Memory() *memory.Memory { return o.memory }

// Patterns exposes the analysis pattern registry.
func (o *Optimizer) Patterns() *analyze.DB { return o.patterns }

// Iterations reports how many learn calls have completed.
func (o *Optimizer) Iterations() int { return o.iterations }

// #endregion accessors

// #region compute

// Multipliers breaks down one computed enhancement.
type Multipliers struct {
	Profile float64
	Task    float64
	Signal  float64
}

// Result is the outcome of one Compute call.
type Result struct {
	TaskType           string
	Baseline           float64
	Optimized          float64
	ImprovementPercent float64
	Multipliers        Multipliers
	Weights            weights.Weights
	Level              string
	Composite          float64
	Iteration          int
	Elapsed            time.Duration
}

// Compute scales baseline by the profile, task, and signal multipliers.
// baseline must be positive and finite; learn controls whether the outcome
// feeds back into weights and memory.
func (o *Optimizer) Compute(baseline float64, taskType string, learn bool) (Result, error) {
	if baseline <= 0 || math.IsNaN(baseline) || math.IsInf(baseline, 0) {
		return Result{}, fault.New(fault.InvalidArgument, "baseline must be positive and finite, got %v", baseline)
	}
	if !o.profile.Initialized() {
		return Result{}, fault.New(fault.UninitializedState, "profile not derived")
	}

	start := time.Now()

	profileMult := (1 + o.profile.Composite*0.25) * o.weights.Profile
	taskMult := BaseTaskMultiplier(taskType) * o.memory.LearningBoost(taskType) * o.weights.Task

	coherence, err := brain.PatternCoherence(o.data.Patterns)
	if err != nil {
		return Result{}, err
	}
	signalBase := 1 + coherence*o.profile.AlphaDominance*0.1
	if signalBase > 1.5 {
		signalBase = 1.5
	}
	signalMult := signalBase * o.weights.Signal

	optimized := baseline * profileMult * taskMult * signalMult
	improvement := (optimized - baseline) / baseline * 100
	elapsed := time.Since(start)

	res := Result{
		TaskType:           taskType,
		Baseline:           baseline,
		Optimized:          optimized,
		ImprovementPercent: improvement,
		Multipliers:        Multipliers{Profile: profileMult, Task: taskMult, Signal: signalMult},
		Weights:            o.weights,
		Level:              o.profile.Level,
		Composite:          o.profile.Composite,
		Iteration:          o.iterations,
		Elapsed:            elapsed,
	}

	if learn && o.config.LearningEnabled {
		if err := o.Learn(taskType, baseline, optimized, elapsed); err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

// #endregion compute

// #region learn

// Learn folds one observed outcome into memory and adjusts the weights.
// Re-running with the same inputs is safe; nothing here is retried.
func (o *Optimizer) Learn(taskType string, baseline, actual float64, elapsed time.Duration) error {
	if !o.config.LearningEnabled {
		return nil
	}
	if baseline <= 0 || math.IsNaN(baseline) || math.IsInf(baseline, 0) {
		return fault.New(fault.InvalidArgument, "baseline must be positive and finite, got %v", baseline)
	}

	ratio := actual / baseline
	var efficiency float64
	if secs := elapsed.Seconds(); secs > 0 {
		efficiency = actual / secs
	}

	rec := memory.Record{
		Timestamp:  time.Now().UTC(),
		TaskType:   taskType,
		Baseline:   baseline,
		Actual:     actual,
		Ratio:      ratio,
		Efficiency: efficiency,
		Level:      o.profile.Level,
		Composite:  o.profile.Composite,
		Iteration:  o.iterations,
	}
	pat := memory.SuccessfulPattern{
		Composite: o.profile.Composite,
		EEG:       copyEEG(o.data.EEG),
		Ratio:     ratio,
	}
	o.memory.Observe(rec, pat)

	adjusted, decision := weights.Adjust(o.weights, ratio, o.config.Adjust)
	o.weights = adjusted
	o.iterations++

	log.Printf("[LEARN] task=%s ratio=%.3f action=%s iteration=%d",
		taskType, ratio, decision.Action, o.iterations)

	if o.config.Store != nil {
		o.persistOutcome(rec, taskType, decision)
	}
	return nil
}

// persistOutcome writes the learn outcome to the store. Failures are
// reported with their cause and do not fail the learn call.
func (o *Optimizer) persistOutcome(rec memory.Record, taskType string, decision weights.Decision) {
	st := o.config.Store
	recordID, err := st.AppendRecord(rec)
	if err != nil {
		log.Printf("[STORE] append record failed: %v", err)
		return
	}
	if ts, ok := o.memory.Task(taskType); ok {
		if err := st.UpsertTask(taskType, ts); err != nil {
			log.Printf("[STORE] upsert task failed: %v", err)
		}
	}
	if err := st.LogWeights(recordID, decision.Action, decision.Reason, o.weights); err != nil {
		log.Printf("[STORE] weight log failed: %v", err)
	}
	if err := st.PruneRecords(o.config.Memory.MaxRecords); err != nil {
		log.Printf("[STORE] prune failed: %v", err)
	}
}

func copyEEG(eeg map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(eeg))
	for k, v := range eeg {
		out[k] = v
	}
	return out
}

// #endregion learn

// #region analyze

// Analyze runs the variant-appropriate analysis. When learning is enabled
// the result is registered in the pattern database and any coherence or
// complexity insights drift the profile. The numeric outcome depends only
// on the content, never on registry state.
func (o *Optimizer) Analyze(source string, content analyze.Content) (analyze.Analysis, error) {
	a, err := analyze.Run(content)
	if err != nil {
		return analyze.Analysis{}, err
	}
	if !o.config.LearningEnabled {
		return a, nil
	}

	key := o.patterns.Put(source, a, o.profile.Composite)

	if o.config.Store != nil {
		if data, err := json.Marshal(a); err == nil {
			if err := o.config.Store.PutPattern(key, source, a.Kind.String(), string(data), o.profile.Composite); err != nil {
				log.Printf("[STORE] put pattern failed: %v", err)
			}
		} else {
			log.Printf("[STORE] marshal pattern failed: %v", err)
		}
	}

	if a.Insights != nil {
		ins := profile.Insights{
			Coherence:  &a.Insights.Coherence,
			Complexity: &a.Insights.Complexity,
		}
		next, metrics := profile.Apply(o.profile, ins, o.config.Drift)
		if metrics.Relabeled {
			log.Printf("[OPT] profile relabeled: %s -> %s (composite %.4f)",
				o.profile.Level, next.Level, next.Composite)
		}
		o.profile = next
	}

	return a, nil
}

// #endregion analyze

// #region summary

// Summary reports learning progress.
type Summary struct {
	Iterations      int
	Records         int
	PatternsLearned int
	TaskTypes       []string
	Tasks           map[string]memory.TaskStats
	Weights         weights.Weights
	Level           string
	Composite       float64
	RecentAvgRatio  float64
}

// Summarize collects the current learning summary. The recent average
// covers the newest ten records.
func (o *Optimizer) Summarize() Summary {
	return Summary{
		Iterations:      o.iterations,
		Records:         o.memory.Len(),
		PatternsLearned: o.patterns.Len(),
		TaskTypes:       o.memory.TaskTypes(),
		Tasks:           o.memory.Tasks(),
		Weights:         o.weights,
		Level:           o.profile.Level,
		Composite:       o.profile.Composite,
		RecentAvgRatio:  o.memory.RecentAverage(10),
	}
}

// #endregion summary

// #region snapshot

// Snapshot captures the profile and signal set for persistence.
func (o *Optimizer) Snapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		Profile:     o.profile,
		EEGMetrics:  o.data.EEG,
		PsiPatterns: o.data.Patterns,
		Metrics:     o.data.Metrics,
		Compat:      o.data.Compat,
		Timestamp:   time.Now().UTC(),
		UseRealData: o.config.UseRealData,
	}
}

// Restore replaces the profile and signal set from a snapshot. Brain-state
// transitions are not persisted, so the restored list is empty.
func (o *Optimizer) Restore(s snapshot.Snapshot) {
	o.data = s.Data()
	o.profile = s.Profile
	o.config.UseRealData = s.UseRealData
	log.Printf("[OPT] restored snapshot: level=%s composite=%.4f", o.profile.Level, o.profile.Composite)
}

// #endregion snapshot
