package memory

import (
	"math"
	"testing"
	"time"
)

func rec(task string, ratio float64) Record {
	return Record{
		Timestamp: time.Now(),
		TaskType:  task,
		Baseline:  1000,
		Actual:    1000 * ratio,
		Ratio:     ratio,
	}
}

func TestObserveFirstSeen(t *testing.T) {
	m := New(DefaultConfig())

	ts, newBest := m.Observe(rec("mining", 1.2), SuccessfulPattern{Ratio: 1.2})

	if newBest {
		t.Fatal("first observation should not flag a new best")
	}
	if ts.Runs != 1 || ts.BestRatio != 1.2 || ts.AvgRatio != 1.2 {
		t.Fatalf("unexpected first-seen stats: %+v", ts)
	}
	if len(ts.Patterns) != 0 {
		t.Fatal("first observation should not record a pattern")
	}
}

func TestObserveRunningStats(t *testing.T) {
	m := New(DefaultConfig())

	m.Observe(rec("ai", 1.0), SuccessfulPattern{})
	m.Observe(rec("ai", 2.0), SuccessfulPattern{Ratio: 2.0})
	ts, newBest := m.Observe(rec("ai", 1.5), SuccessfulPattern{})

	if newBest {
		t.Fatal("1.5 should not beat best of 2.0")
	}
	if ts.Runs != 3 {
		t.Fatalf("expected 3 runs, got %d", ts.Runs)
	}
	if math.Abs(ts.AvgRatio-1.5) > 1e-12 {
		t.Fatalf("expected average 1.5, got %f", ts.AvgRatio)
	}
	if ts.BestRatio != 2.0 {
		t.Fatalf("expected best 2.0, got %f", ts.BestRatio)
	}
	if len(ts.Patterns) != 1 {
		t.Fatalf("expected 1 pattern from the new best, got %d", len(ts.Patterns))
	}
}

func TestObservePatternCap(t *testing.T) {
	m := New(Config{MaxRecords: 100, MaxPatterns: 3})

	m.Observe(rec("mining", 1.0), SuccessfulPattern{})
	for i := 0; i < 10; i++ {
		ratio := 1.1 + float64(i)*0.1
		m.Observe(rec("mining", ratio), SuccessfulPattern{Ratio: ratio})
	}

	ts, _ := m.Task("mining")
	if len(ts.Patterns) != 3 {
		t.Fatalf("expected pattern list capped at 3, got %d", len(ts.Patterns))
	}
	// Newest patterns survive.
	if math.Abs(ts.Patterns[2].Ratio-2.0) > 1e-9 {
		t.Fatalf("expected newest pattern ratio near 2.0, got %f", ts.Patterns[2].Ratio)
	}
}

func TestRecordRing(t *testing.T) {
	m := New(Config{MaxRecords: 5, MaxPatterns: 8})

	for i := 1; i <= 8; i++ {
		m.Observe(rec("general", float64(i)), SuccessfulPattern{})
	}

	if m.Len() != 5 {
		t.Fatalf("expected ring capped at 5, got %d", m.Len())
	}
	recs := m.Records()
	// Oldest surviving record is ratio 4, newest is ratio 8.
	if recs[0].Ratio != 4 || recs[4].Ratio != 8 {
		t.Fatalf("unexpected ring order: first %f last %f", recs[0].Ratio, recs[4].Ratio)
	}
}

func TestLearningBoost(t *testing.T) {
	m := New(DefaultConfig())

	if got := m.LearningBoost("unseen"); got != 1.0 {
		t.Fatalf("unseen task: expected 1.0, got %f", got)
	}

	m.Observe(rec("mining", 3.0), SuccessfulPattern{})
	if got := m.LearningBoost("mining"); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("expected 0.3, got %f", got)
	}

	m.Observe(rec("mining", 50), SuccessfulPattern{Ratio: 50})
	if got := m.LearningBoost("mining"); got != 1.2 {
		t.Fatalf("expected boost capped at 1.2, got %f", got)
	}
}

func TestRecentAverage(t *testing.T) {
	m := New(DefaultConfig())
	for _, ratio := range []float64{1, 2, 3, 4} {
		m.Observe(rec("ai", ratio), SuccessfulPattern{})
	}

	if got := m.RecentAverage(2); math.Abs(got-3.5) > 1e-12 {
		t.Fatalf("expected 3.5, got %f", got)
	}
	// n larger than history falls back to the whole history.
	if got := m.RecentAverage(100); math.Abs(got-2.5) > 1e-12 {
		t.Fatalf("expected 2.5, got %f", got)
	}
	if got := New(DefaultConfig()).RecentAverage(5); got != 0 {
		t.Fatalf("empty memory: expected 0, got %f", got)
	}
}
