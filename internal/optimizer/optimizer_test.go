package optimizer

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/hcm-labs/hcm/internal/analyze"
	"github.com/hcm-labs/hcm/internal/fault"
	"github.com/hcm-labs/hcm/internal/profile"
	"github.com/hcm-labs/hcm/internal/store"
	"github.com/hcm-labs/hcm/internal/weights"
)

func newRealOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	o, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	return o
}

func TestNewRealData(t *testing.T) {
	o := newRealOptimizer(t)

	p := o.Profile()
	if !p.Initialized() {
		t.Fatal("profile should be derived on construction")
	}
	if p.Level != profile.LevelExceptional {
		t.Fatalf("expected Exceptional, got %s", p.Level)
	}
	if math.Abs(p.Composite-0.9975) > 1e-12 {
		t.Fatalf("expected composite 0.9975, got %f", p.Composite)
	}
	if o.Weights() != weights.Default() {
		t.Fatalf("expected neutral weights, got %+v", o.Weights())
	}
	if o.Iterations() != 0 {
		t.Fatal("fresh optimizer should have zero iterations")
	}
}

func TestNewSyntheticRequiresRand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseRealData = false

	_, err := New(cfg)
	if !fault.IsKind(err, fault.InvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}

	cfg.Rand = rand.New(rand.NewSource(1))
	o, err := New(cfg)
	if err != nil {
		t.Fatalf("seeded synthetic: %v", err)
	}
	if !o.Profile().Initialized() {
		t.Fatal("synthetic profile should be derived")
	}
}

func TestComputeRejectsBadBaselines(t *testing.T) {
	o := newRealOptimizer(t)

	for _, baseline := range []float64{0, -3779, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := o.Compute(baseline, "mining", false)
		if !fault.IsKind(err, fault.InvalidArgument) {
			t.Fatalf("baseline %v: expected invalid_argument, got %v", baseline, err)
		}
	}
}

func TestComputeMultipliers(t *testing.T) {
	o := newRealOptimizer(t)

	res, err := o.Compute(3779, "mining", false)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// (1 + 0.9975*0.25) * 1.0
	if math.Abs(res.Multipliers.Profile-1.249375) > 1e-12 {
		t.Fatalf("expected profile multiplier 1.249375, got %f", res.Multipliers.Profile)
	}
	// Table entry for mining, no learning boost yet, neutral task weight.
	if math.Abs(res.Multipliers.Task-1.234) > 1e-12 {
		t.Fatalf("expected task multiplier 1.234, got %f", res.Multipliers.Task)
	}
	if res.Multipliers.Signal <= 1 || res.Multipliers.Signal > 1.5 {
		t.Fatalf("signal multiplier out of expected range: %f", res.Multipliers.Signal)
	}

	product := res.Baseline * res.Multipliers.Profile * res.Multipliers.Task * res.Multipliers.Signal
	if math.Abs(res.Optimized-product) > 1e-9 {
		t.Fatalf("optimized %f inconsistent with multipliers (%f)", res.Optimized, product)
	}
	wantImprovement := (res.Optimized - res.Baseline) / res.Baseline * 100
	if math.Abs(res.ImprovementPercent-wantImprovement) > 1e-9 {
		t.Fatalf("improvement %f inconsistent, want %f", res.ImprovementPercent, wantImprovement)
	}
	if res.Optimized <= res.Baseline || math.IsNaN(res.Optimized) || math.IsInf(res.Optimized, 0) {
		t.Fatalf("optimized value not a finite improvement: %f", res.Optimized)
	}
}

func TestComputeProfileMultiplierFormula(t *testing.T) {
	o := newRealOptimizer(t)

	// Pin the composite through a snapshot restore to check the formula at a
	// known point: (1 + 0.95*0.25) * 1.0 = 1.2375.
	s := o.Snapshot()
	s.Profile.Composite = 0.95
	o.Restore(s)

	res, err := o.Compute(3779, "mining", false)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(res.Multipliers.Profile-1.2375) > 1e-12 {
		t.Fatalf("expected profile multiplier 1.2375, got %f", res.Multipliers.Profile)
	}
	if math.Abs(res.Multipliers.Task-1.234) > 1e-12 {
		t.Fatalf("expected task multiplier 1.234, got %f", res.Multipliers.Task)
	}
}

func TestComputeUnknownTaskUsesDefault(t *testing.T) {
	o := newRealOptimizer(t)

	res, err := o.Compute(1000, "quantum", false)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(res.Multipliers.Task-DefaultTaskMultiplier) > 1e-12 {
		t.Fatalf("expected default task multiplier %f, got %f", DefaultTaskMultiplier, res.Multipliers.Task)
	}
}

func TestComputeWithLearning(t *testing.T) {
	o := newRealOptimizer(t)

	res, err := o.Compute(1000, "ai", true)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if o.Iterations() != 1 {
		t.Fatalf("expected 1 iteration, got %d", o.Iterations())
	}
	if o.Memory().Len() != 1 {
		t.Fatalf("expected 1 record, got %d", o.Memory().Len())
	}
	// The enhancement ratio exceeds the good threshold, so weights strengthen.
	if o.Weights().Profile <= 1.0 {
		t.Fatalf("expected strengthened profile weight, got %f", o.Weights().Profile)
	}
	if !o.Weights().InBounds() {
		t.Fatalf("weights out of bounds: %+v", o.Weights())
	}
	// The result reports the weights used for this computation, before feedback.
	if res.Weights != weights.Default() {
		t.Fatalf("result should carry pre-feedback weights, got %+v", res.Weights)
	}
}

func TestComputeWithoutLearning(t *testing.T) {
	o := newRealOptimizer(t)

	if _, err := o.Compute(1000, "ai", false); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if o.Iterations() != 0 || o.Memory().Len() != 0 {
		t.Fatal("learn=false must not touch memory or iterations")
	}
	if o.Weights() != weights.Default() {
		t.Fatalf("weights changed without learning: %+v", o.Weights())
	}
}

func TestLearnDisabledIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LearningEnabled = false
	o, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := o.Learn("mining", 1000, 1500, time.Second); err != nil {
		t.Fatalf("learn: %v", err)
	}
	if o.Iterations() != 0 || o.Memory().Len() != 0 {
		t.Fatal("disabled learning must not record anything")
	}
}

func TestLearnRejectsBadBaseline(t *testing.T) {
	o := newRealOptimizer(t)

	err := o.Learn("mining", 0, 1500, time.Second)
	if !fault.IsKind(err, fault.InvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
}

func TestAnalyzeRegistersAndDrifts(t *testing.T) {
	o := newRealOptimizer(t)
	before := o.Profile()

	data := make([]float64, 20)
	for i := range data {
		data[i] = 0.5 + 0.01*float64(i)
	}
	a, err := o.Analyze("sensor", analyze.Numeric(data))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Insights == nil {
		t.Fatal("expected insights for a 20-sample sequence")
	}
	if o.Patterns().Len() != 1 {
		t.Fatalf("expected 1 registered pattern, got %d", o.Patterns().Len())
	}
	if o.Profile().Coherence == before.Coherence {
		t.Fatal("coherence insight should drift the profile")
	}
}

func TestAnalyzeDeterministicOutcome(t *testing.T) {
	o := newRealOptimizer(t)
	content := analyze.Text("optimize focus")

	a1, err := o.Analyze("feed", content)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	a2, err := o.Analyze("feed", content)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if a1.WordCount != a2.WordCount || len(a1.Patterns) != len(a2.Patterns) {
		t.Fatal("identical content must yield identical analyses")
	}
	// But the registry still keeps both under distinct keys.
	entries := o.Patterns().Entries()
	if len(entries) != 2 || entries[0].Key == entries[1].Key {
		t.Fatalf("expected 2 distinct registry entries, got %+v", entries)
	}
}

func TestAnalyzeLearningDisabledSkipsSideEffects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LearningEnabled = false
	o, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	before := o.Profile()

	data := make([]float64, 20)
	for i := range data {
		data[i] = float64(i)
	}
	if _, err := o.Analyze("sensor", analyze.Numeric(data)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if o.Patterns().Len() != 0 {
		t.Fatal("disabled learning must not register patterns")
	}
	if o.Profile() != before {
		t.Fatal("disabled learning must not drift the profile")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	o := newRealOptimizer(t)

	// Drift the profile before snapshotting so the restore has something
	// non-default to carry.
	data := make([]float64, 20)
	for i := range data {
		data[i] = 0.9 + 0.001*float64(i)
	}
	if _, err := o.Analyze("sensor", analyze.Numeric(data)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	s := o.Snapshot()

	other := newRealOptimizer(t)
	other.Restore(s)

	if other.Profile() != o.Profile() {
		t.Fatalf("restored profile differs: %+v != %+v", other.Profile(), o.Profile())
	}
	if len(other.Data().States) != 0 {
		t.Fatal("restored data should carry no transitions")
	}
}

func TestComputePersistsThroughStore(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "opt.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := DefaultConfig()
	cfg.Store = st
	o, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := o.Compute(2500, "general", true); err != nil {
		t.Fatalf("compute: %v", err)
	}

	n, err := st.CountRecords()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 persisted record, got %d", n)
	}
	tasks, err := st.LoadTasks()
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if _, ok := tasks["general"]; !ok {
		t.Fatal("task memory row missing")
	}
	entries, err := st.RecentWeightLog(5)
	if err != nil {
		t.Fatalf("weight log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 weight log row, got %d", len(entries))
	}
}

func TestSummarize(t *testing.T) {
	o := newRealOptimizer(t)

	for i := 0; i < 3; i++ {
		if _, err := o.Compute(1000, "mining", true); err != nil {
			t.Fatalf("compute: %v", err)
		}
	}
	s := o.Summarize()

	if s.Iterations != 3 || s.Records != 3 {
		t.Fatalf("unexpected summary counts: %+v", s)
	}
	if len(s.TaskTypes) != 1 || s.TaskTypes[0] != "mining" {
		t.Fatalf("unexpected task types: %v", s.TaskTypes)
	}
	if s.Tasks["mining"].Runs != 3 {
		t.Fatalf("expected 3 runs, got %d", s.Tasks["mining"].Runs)
	}
	if s.RecentAvgRatio <= 0 {
		t.Fatalf("expected positive recent average, got %f", s.RecentAvgRatio)
	}
}
