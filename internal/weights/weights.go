package weights

import (
	"fmt"

	"github.com/hcm-labs/hcm/internal/stats"
)

// #region weights

// Bounds for every adaptation weight.
const (
	MinWeight = 0.5
	MaxWeight = 2.0
)

// Weights are the three multiplicative adaptation factors.
type Weights struct {
	Profile float64
	Task    float64
	Signal  float64
}

// Default returns the neutral starting weights.
func Default() Weights {
	return Weights{Profile: 1.0, Task: 1.0, Signal: 1.0}
}

// InBounds reports whether every weight sits within [MinWeight, MaxWeight].
func (w Weights) InBounds() bool {
	for _, v := range []float64{w.Profile, w.Task, w.Signal} {
		if v < MinWeight || v > MaxWeight {
			return false
		}
	}
	return true
}

// #endregion weights

// #region config

// AdjustConfig holds the feedback thresholds and per-weight step factors.
type AdjustConfig struct {
	Rate          float64 // base learning rate
	GoodThreshold float64 // ratios above this strengthen weights
	PoorThreshold float64 // ratios below this weaken weights

	GoodFactors [3]float64 // profile, task, signal step factors on gain
	PoorFactors [3]float64 // profile, task, signal step factors on loss
}

// DefaultAdjustConfig returns the recorded feedback parameters.
func DefaultAdjustConfig() AdjustConfig {
	return AdjustConfig{
		Rate:          0.1,
		GoodThreshold: 1.1,
		PoorThreshold: 0.9,
		GoodFactors:   [3]float64{0.5, 0.3, 0.2},
		PoorFactors:   [3]float64{0.3, 0.2, 0.1},
	}
}

// #endregion config

// #region decision

// Decision records what an Adjust call did.
type Decision struct {
	Action string // "strengthen" | "weaken" | "no_op"
	Reason string
}

// #endregion decision

// #region adjust

// Adjust is a pure single-step feedback update. Ratios inside the neutral
// band leave the weights untouched; every result is clamped to bounds, so
// drift stays bounded for any ratio sequence, pathological values included.
func Adjust(w Weights, ratio float64, config AdjustConfig) (Weights, Decision) {
	switch {
	case ratio > config.GoodThreshold:
		next := Weights{
			Profile: w.Profile * (1 + config.Rate*config.GoodFactors[0]),
			Task:    w.Task * (1 + config.Rate*config.GoodFactors[1]),
			Signal:  w.Signal * (1 + config.Rate*config.GoodFactors[2]),
		}
		return clampAll(next), Decision{
			Action: "strengthen",
			Reason: fmt.Sprintf("ratio %.4f > %.2f", ratio, config.GoodThreshold),
		}
	case ratio < config.PoorThreshold:
		next := Weights{
			Profile: w.Profile * (1 - config.Rate*config.PoorFactors[0]),
			Task:    w.Task * (1 - config.Rate*config.PoorFactors[1]),
			Signal:  w.Signal * (1 - config.Rate*config.PoorFactors[2]),
		}
		return clampAll(next), Decision{
			Action: "weaken",
			Reason: fmt.Sprintf("ratio %.4f < %.2f", ratio, config.PoorThreshold),
		}
	default:
		return w, Decision{
			Action: "no_op",
			Reason: fmt.Sprintf("ratio %.4f within neutral band", ratio),
		}
	}
}

func clampAll(w Weights) Weights {
	return Weights{
		Profile: stats.Clamp(w.Profile, MinWeight, MaxWeight),
		Task:    stats.Clamp(w.Task, MinWeight, MaxWeight),
		Signal:  stats.Clamp(w.Signal, MinWeight, MaxWeight),
	}
}

// #endregion adjust
