package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hcm-labs/hcm/internal/fault"
	"github.com/hcm-labs/hcm/internal/optimizer"
)

func newOptimizer(t *testing.T) *optimizer.Optimizer {
	t.Helper()
	o, err := optimizer.New(optimizer.DefaultConfig())
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	return o
}

func TestRunCountsOutcomes(t *testing.T) {
	o := newOptimizer(t)

	results, summary := Run(o, []Interaction{
		{TaskType: "mining", Baseline: 3779},
		{TaskType: "ai", Baseline: 1000},
		{TaskType: "general", Baseline: -5}, // rejected
		{TaskType: "nuclear", Baseline: 500},
	})

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if summary.TotalTurns != 4 {
		t.Fatalf("expected 4 turns, got %d", summary.TotalTurns)
	}
	if summary.Rejected != 1 {
		t.Fatalf("expected 1 rejection, got %d", summary.Rejected)
	}
	if summary.Improved != 3 {
		t.Fatalf("expected 3 improvements, got %d", summary.Improved)
	}
	if summary.Degraded != 0 {
		t.Fatalf("expected 0 degraded, got %d", summary.Degraded)
	}
	if !fault.IsKind(results[2].Err, fault.InvalidArgument) {
		t.Fatalf("rejected turn should carry invalid_argument, got %v", results[2].Err)
	}
}

func TestRunContinuesAfterRejection(t *testing.T) {
	o := newOptimizer(t)

	results, _ := Run(o, []Interaction{
		{TaskType: "mining", Baseline: 0},
		{TaskType: "mining", Baseline: 1000},
	})

	if results[0].Err == nil {
		t.Fatal("first turn should be rejected")
	}
	if results[1].Err != nil {
		t.Fatalf("second turn should succeed: %v", results[1].Err)
	}
	// Rejected turns never reach the learn path.
	if o.Iterations() != 1 {
		t.Fatalf("expected 1 learn iteration, got %d", o.Iterations())
	}
}

func TestRunWeightsStayBounded(t *testing.T) {
	o := newOptimizer(t)

	interactions := make([]Interaction, 100)
	for i := range interactions {
		interactions[i] = Interaction{TaskType: "mining", Baseline: 3779}
	}
	_, summary := Run(o, interactions)

	if !summary.WeightsInBound {
		t.Fatalf("weights left bounds: %+v", summary.FinalWeights)
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	doc := `{
  "description": "two mining turns",
  "interactions": [
    {"task_type": "mining", "baseline": 3779},
    {"task_type": "mining", "baseline": 3779}
  ],
  "expected_results": [
    {"turn": 0, "min_improvement_percent": 10}
  ]
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Description != "two mining turns" || len(f.Interactions) != 2 {
		t.Fatalf("unexpected fixture: %+v", f)
	}
	if !f.RealData() {
		t.Fatal("data mode should default to the fixed set")
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFixture(filepath.Join(dir, "absent.json"))
	if !fault.IsKind(err, fault.IOFailure) {
		t.Fatalf("missing file: expected io_failure, got %v", err)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"interactions": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFixture(empty)
	if !fault.IsKind(err, fault.InvalidArgument) {
		t.Fatalf("empty fixture: expected invalid_argument, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	f := &Fixture{
		Expected: []ExpectedResult{
			{Turn: 0, MinImprovementPercent: 10},
			{Turn: 1, Rejected: true},
			{Turn: 5},
		},
	}
	results := []Result{
		{ImprovementPercent: 42},
		{Err: fault.New(fault.InvalidArgument, "bad baseline")},
	}

	mismatches := f.Verify(results)
	// Only the out-of-range turn should mismatch.
	if len(mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %d: %v", len(mismatches), mismatches)
	}

	f.Expected[0].MinImprovementPercent = 50
	if got := f.Verify(results); len(got) != 2 {
		t.Fatalf("expected 2 mismatches, got %d: %v", len(got), got)
	}
}
