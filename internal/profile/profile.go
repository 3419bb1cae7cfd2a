package profile

import (
	"github.com/hcm-labs/hcm/internal/brain"
	"github.com/hcm-labs/hcm/internal/stats"
)

// #region levels

// Level names for bucketed composite scores.
const (
	LevelExceptional = "Exceptional"
	LevelHigh        = "High"
	LevelModerate    = "Moderate"
	LevelBasic       = "Basic"
)

// LevelFor buckets a composite score into a qualitative level.
func LevelFor(composite float64) string {
	switch {
	case composite >= 0.9:
		return LevelExceptional
	case composite >= 0.8:
		return LevelHigh
	case composite >= 0.6:
		return LevelModerate
	default:
		return LevelBasic
	}
}

// #endregion levels

// #region profile

// Profile is the derived quality profile. Scores are bounded to [0,1];
// Composite is their average and Level its bucketed label.
type Profile struct {
	Coherence      float64
	Complexity     float64
	Integration    float64
	AlphaDominance float64
	Level          string
	Composite      float64
}

// Initialized reports whether the profile has been derived.
func (p Profile) Initialized() bool {
	return p.Level != ""
}

// #endregion profile

// #region derive

// Derive computes the initial profile from reference data. The composite
// averages all four scores; later drift recomputes it over three (see Apply).
func Derive(data brain.Data) Profile {
	metric := func(name string) float64 {
		if v, ok := data.Metrics[name]; ok {
			return v
		}
		return 0.5
	}

	coherence := metric("cosine_similarity")
	complexity := metric("spectral_similarity")
	integration := metric("degree_similarity")
	alpha := brain.AlphaDominance(data.EEG)

	composite := (coherence + complexity + integration + alpha) / 4

	return Profile{
		Coherence:      coherence,
		Complexity:     complexity,
		Integration:    integration,
		AlphaDominance: alpha,
		Level:          LevelFor(composite),
		Composite:      composite,
	}
}

// #endregion derive

// #region drift

// Insights carries observed coherence/complexity evidence into Apply.
// A nil field means the observation did not produce that insight.
type Insights struct {
	Coherence  *float64
	Complexity *float64
}

// DriftConfig holds the exponential-moving-average rate for profile drift.
type DriftConfig struct {
	Rate float64 // blend weight for new observations (default 0.05)
}

// DefaultDriftConfig returns the conservative drift rate.
func DefaultDriftConfig() DriftConfig {
	return DriftConfig{Rate: 0.05}
}

// Metrics captures how much each field moved in one Apply call.
type Metrics struct {
	CoherenceDelta  float64
	ComplexityDelta float64
	Relabeled       bool
}

// Apply is a pure function that drifts the profile toward new insights.
// The composite is recomputed over coherence, complexity, and integration
// only; alpha dominance stays fixed after derivation.
func Apply(old Profile, ins Insights, config DriftConfig) (Profile, Metrics) {
	next := old
	var m Metrics

	if ins.Coherence != nil {
		updated := old.Coherence*(1-config.Rate) + *ins.Coherence*config.Rate
		m.CoherenceDelta = updated - old.Coherence
		next.Coherence = updated
	}
	if ins.Complexity != nil {
		observed := stats.Clamp(*ins.Complexity, 0, 1)
		updated := old.Complexity*(1-config.Rate) + observed*config.Rate
		m.ComplexityDelta = updated - old.Complexity
		next.Complexity = updated
	}

	if ins.Coherence != nil || ins.Complexity != nil {
		next.Composite = (next.Coherence + next.Complexity + next.Integration) / 3
		next.Level = LevelFor(next.Composite)
		m.Relabeled = next.Level != old.Level
	}

	return next, m
}

// #endregion drift
