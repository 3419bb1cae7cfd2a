package brain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/hcm-labs/hcm/internal/fault"
)

func TestRealDataShape(t *testing.T) {
	d := RealData()

	if d.EEG["alpha_src"] != 1.0 || d.EEG["alpha_tgt"] != 1.0 || d.EEG["alpha_gate"] != 1.0 {
		t.Fatal("alpha channels should all be 1.0")
	}
	for _, band := range []string{"f4", "f9", "f18", "f27"} {
		if len(d.Patterns[band]) != 9 {
			t.Fatalf("band %s: expected 9 samples, got %d", band, len(d.Patterns[band]))
		}
	}
	if len(d.States) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(d.States))
	}
	if d.Compat.Decision != "open" {
		t.Fatalf("expected open transfer decision, got %s", d.Compat.Decision)
	}
}

func TestSyntheticDeterministicUnderSeed(t *testing.T) {
	a := Synthetic(rand.New(rand.NewSource(7)))
	b := Synthetic(rand.New(rand.NewSource(7)))

	if a.EEG["alpha_src"] != b.EEG["alpha_src"] {
		t.Fatal("same seed should produce identical EEG values")
	}
	for i := range a.Patterns["f9"] {
		if a.Patterns["f9"][i] != b.Patterns["f9"][i] {
			t.Fatalf("same seed diverged at f9[%d]", i)
		}
	}
}

func TestPatternCoherence(t *testing.T) {
	// Identical samples: std is 0, coherence is 1 - 0/(mean+eps) = 1.
	c, err := PatternCoherence(map[string][]float64{"f9": {0.1, 0.1, 0.1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(c-1) > 1e-12 {
		t.Fatalf("uniform samples: expected coherence 1, got %f", c)
	}

	// More spread means lower coherence.
	spread, err := PatternCoherence(map[string][]float64{"f9": {0.01, 0.2, 0.02, 0.19}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spread >= c {
		t.Fatalf("spread samples should score below uniform: %f >= %f", spread, c)
	}
}

func TestPatternCoherenceEmpty(t *testing.T) {
	_, err := PatternCoherence(map[string][]float64{})
	if !fault.IsKind(err, fault.InvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
}

func TestAlphaDominance(t *testing.T) {
	got := AlphaDominance(map[string]float64{
		"alpha_src":  0.9,
		"alpha_tgt":  0.8,
		"alpha_gate": 1.0,
	})
	if math.Abs(got-0.9) > 1e-12 {
		t.Fatalf("expected 0.9, got %f", got)
	}

	// Missing channels fall back to 0.5 each.
	if got := AlphaDominance(nil); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected 0.5 fallback, got %f", got)
	}
}
