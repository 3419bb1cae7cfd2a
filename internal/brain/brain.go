// Package brain holds the fixed reference signal set and its synthetic
// counterpart. The numeric constants are carried through as-is from the
// source recordings; they are opaque inputs, not derived quantities.
package brain

import (
	"math/rand"

	"github.com/hcm-labs/hcm/internal/fault"
	"github.com/hcm-labs/hcm/internal/stats"
)

// #region types

// NodeState identifies one endpoint of a brain-state transition.
type NodeState struct {
	Name string `json:"name"`
	Z    int    `json:"Z"`
	N    int    `json:"N"`
}

// Transition is a recorded state transition with compatibility scores.
type Transition struct {
	Source            NodeState `json:"source"`
	Target            NodeState `json:"target"`
	Compatibility     float64   `json:"compatibility"`
	RoleCompatibility float64   `json:"role_compatibility"`
}

// TransferCompatibility is the recorded transfer decision and margin.
type TransferCompatibility struct {
	Decision string  `json:"decision"`
	Margin   float64 `json:"margin"`
}

// Data bundles the signal set and derived reference metrics.
// EEG is a flat name→value map; Patterns maps a band name to a short
// ordered sample sequence and is read-only after construction.
type Data struct {
	EEG      map[string]float64
	Patterns map[string][]float64
	States   []Transition
	Metrics  map[string]float64
	Compat   TransferCompatibility
}

// #endregion types

// #region real-data

// RealData returns the fixed validated signal set.
func RealData() Data {
	return Data{
		EEG: map[string]float64{
			"alpha_src":  1.0,
			"alpha_tgt":  1.0,
			"alpha_gate": 1.0,
			"delta_S":    0.007115867142499788,
			"hsl_mix":    1.875,
		},
		Patterns: map[string][]float64{
			"f4":  {0.043, 0.067, 0.059, 0.076, 0.128, 0.158, 0.118, 0.136, 0.213}, // theta
			"f9":  {0.031, 0.055, 0.072, 0.106, 0.121, 0.142, 0.144, 0.150, 0.179}, // alpha
			"f18": {0.029, 0.045, 0.051, 0.065, 0.065, 0.065, 0.047, 0.034, 0.017}, // beta
			"f27": {0.029, 0.045, 0.051, 0.065, 0.065, 0.065, 0.047, 0.034, 0.017}, // gamma
		},
		States: []Transition{
			{
				Source:            NodeState{Name: "RestingState", Z: 1, N: 0},
				Target:            NodeState{Name: "MotorActive", Z: 2, N: 1},
				Compatibility:     0.85,
				RoleCompatibility: 0.92,
			},
			{
				Source:            NodeState{Name: "MotorActive", Z: 2, N: 1},
				Target:            NodeState{Name: "AttentionFocused", Z: 3, N: 2},
				Compatibility:     0.78,
				RoleCompatibility: 0.88,
			},
		},
		Metrics: map[string]float64{
			"cosine_similarity":   0.9937,
			"spectral_similarity": 0.9995,
			"degree_similarity":   0.9968,
			"role_similarity":     1.0,
			"entropy_stateA":      3.639,
			"entropy_stateB":      3.646,
			"entropy_gap":         0.006,
		},
		Compat: TransferCompatibility{Decision: "open", Margin: 0.30},
	}
}

// #endregion real-data

// #region synthetic

// Synthetic generates a perturbed signal set for runs without the fixed
// recordings. rng must be non-nil so tests can seed deterministically.
func Synthetic(rng *rand.Rand) Data {
	gauss := func(mean, sigma float64) float64 {
		return mean + rng.NormFloat64()*sigma
	}
	band := func(mean, sigma float64) []float64 {
		samples := make([]float64, 9)
		for i := range samples {
			samples[i] = gauss(mean, sigma)
		}
		return samples
	}
	return Data{
		EEG: map[string]float64{
			"alpha_src":  gauss(0.95, 0.02),
			"alpha_tgt":  gauss(0.95, 0.02),
			"alpha_gate": gauss(0.95, 0.02),
			"delta_S":    gauss(0.007, 0.001),
			"hsl_mix":    gauss(1.8, 0.1),
		},
		Patterns: map[string][]float64{
			"f4":  band(0.04, 0.01),
			"f9":  band(0.03, 0.01),
			"f18": band(0.03, 0.005),
			"f27": band(0.03, 0.005),
		},
		States: []Transition{
			{
				Source:            NodeState{Name: "RestingState", Z: 1, N: 0},
				Target:            NodeState{Name: "ActiveState", Z: 2, N: 1},
				Compatibility:     gauss(0.8, 0.05),
				RoleCompatibility: gauss(0.9, 0.03),
			},
		},
		Metrics: map[string]float64{
			"cosine_similarity":   gauss(0.99, 0.005),
			"spectral_similarity": gauss(0.995, 0.003),
			"degree_similarity":   gauss(0.996, 0.004),
			"role_similarity":     1.0,
			"entropy_stateA":      gauss(3.6, 0.1),
			"entropy_stateB":      gauss(3.6, 0.1),
			"entropy_gap":         gauss(0.01, 0.005),
		},
		Compat: TransferCompatibility{Decision: "open", Margin: gauss(0.25, 0.05)},
	}
}

// #endregion synthetic

// #region coherence

// PatternCoherence computes 1 - std/mean across every band sample.
// A near-zero mean is epsilon-guarded rather than propagated as a fault.
func PatternCoherence(patterns map[string][]float64) (float64, error) {
	var all []float64
	for _, samples := range patterns {
		all = append(all, samples...)
	}
	if len(all) == 0 {
		return 0, fault.New(fault.InvalidArgument, "empty signal set")
	}
	mean := stats.Mean(all)
	return 1 - stats.Std(all)/(mean+0.001), nil
}

// AlphaDominance averages the three alpha channel values.
// Missing channels fall back to 0.5, matching the recorded defaults.
func AlphaDominance(eeg map[string]float64) float64 {
	channel := func(name string) float64 {
		if v, ok := eeg[name]; ok {
			return v
		}
		return 0.5
	}
	return (channel("alpha_src") + channel("alpha_tgt") + channel("alpha_gate")) / 3
}

// #endregion coherence
