// Package memory keeps per-task optimization statistics and a bounded
// performance history in process memory.
package memory

import (
	"time"
)

// #region types

// SuccessfulPattern snapshots the conditions of a new best ratio.
type SuccessfulPattern struct {
	Composite float64
	EEG       map[string]float64
	Ratio     float64
}

// TaskStats aggregates outcomes for one task type.
type TaskStats struct {
	BestRatio float64
	AvgRatio  float64
	Runs      int
	Patterns  []SuccessfulPattern
}

// Record is one immutable performance log entry.
type Record struct {
	Timestamp  time.Time
	TaskType   string
	Baseline   float64
	Actual     float64
	Ratio      float64
	Efficiency float64
	Level      string
	Composite  float64
	Iteration  int
}

// #endregion types

// #region config

// Config bounds history growth. The source kept both lists unbounded,
// which is a leak; a ring cap replaces that behavior.
type Config struct {
	MaxRecords  int // performance history ring size
	MaxPatterns int // successful patterns kept per task
}

// DefaultConfig returns the standard caps.
func DefaultConfig() Config {
	return Config{MaxRecords: 1000, MaxPatterns: 64}
}

// #endregion config

// #region memory

// Memory holds per-task stats plus the capped record ring.
type Memory struct {
	config  Config
	tasks   map[string]*TaskStats
	records []Record
	start   int // ring head when full
	full    bool
}

// New creates an empty Memory with the given caps.
func New(config Config) *Memory {
	if config.MaxRecords <= 0 {
		config.MaxRecords = DefaultConfig().MaxRecords
	}
	if config.MaxPatterns <= 0 {
		config.MaxPatterns = DefaultConfig().MaxPatterns
	}
	return &Memory{
		config: config,
		tasks:  make(map[string]*TaskStats),
	}
}

// #endregion memory

// #region observe

// Observe folds one outcome into the task's running stats and appends the
// record. The running average uses the incremental form; best is a running
// max. newBest is true when the ratio beat the previous best.
func (m *Memory) Observe(rec Record, pat SuccessfulPattern) (stats TaskStats, newBest bool) {
	ts, ok := m.tasks[rec.TaskType]
	if !ok {
		ts = &TaskStats{BestRatio: rec.Ratio, AvgRatio: rec.Ratio, Runs: 1}
		m.tasks[rec.TaskType] = ts
	} else {
		ts.Runs++
		ts.AvgRatio += (rec.Ratio - ts.AvgRatio) / float64(ts.Runs)
		if rec.Ratio > ts.BestRatio {
			ts.BestRatio = rec.Ratio
			newBest = true
			ts.Patterns = append(ts.Patterns, pat)
			if len(ts.Patterns) > m.config.MaxPatterns {
				ts.Patterns = ts.Patterns[len(ts.Patterns)-m.config.MaxPatterns:]
			}
		}
	}

	m.append(rec)
	return *ts, newBest
}

func (m *Memory) append(rec Record) {
	if len(m.records) < m.config.MaxRecords {
		m.records = append(m.records, rec)
		return
	}
	m.records[m.start] = rec
	m.start = (m.start + 1) % m.config.MaxRecords
	m.full = true
}

// #endregion observe

// #region lookups

// LearningBoost returns min(1.2, bestRatio*0.1) for seen tasks, 1.0 otherwise.
func (m *Memory) LearningBoost(taskType string) float64 {
	ts, ok := m.tasks[taskType]
	if !ok {
		return 1.0
	}
	boost := ts.BestRatio * 0.1
	if boost > 1.2 {
		return 1.2
	}
	return boost
}

// Task returns a copy of the stats for one task type.
func (m *Memory) Task(taskType string) (TaskStats, bool) {
	ts, ok := m.tasks[taskType]
	if !ok {
		return TaskStats{}, false
	}
	return *ts, true
}

// TaskTypes lists every task type seen so far.
func (m *Memory) TaskTypes() []string {
	types := make([]string, 0, len(m.tasks))
	for t := range m.tasks {
		types = append(types, t)
	}
	return types
}

// Tasks returns a copy of all per-task stats.
func (m *Memory) Tasks() map[string]TaskStats {
	out := make(map[string]TaskStats, len(m.tasks))
	for t, ts := range m.tasks {
		out[t] = *ts
	}
	return out
}

// Records returns the history oldest-first.
func (m *Memory) Records() []Record {
	if !m.full {
		out := make([]Record, len(m.records))
		copy(out, m.records)
		return out
	}
	out := make([]Record, 0, m.config.MaxRecords)
	out = append(out, m.records[m.start:]...)
	out = append(out, m.records[:m.start]...)
	return out
}

// Len reports how many records are retained.
func (m *Memory) Len() int {
	return len(m.records)
}

// RecentAverage returns the mean ratio of the newest n records.
func (m *Memory) RecentAverage(n int) float64 {
	recs := m.Records()
	if len(recs) == 0 {
		return 0
	}
	if n > len(recs) {
		n = len(recs)
	}
	var sum float64
	for _, r := range recs[len(recs)-n:] {
		sum += r.Ratio
	}
	return sum / float64(n)
}

// #endregion lookups
