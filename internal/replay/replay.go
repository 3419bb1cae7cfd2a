// Package replay re-runs recorded optimization interactions through the
// compute→learn pipeline for offline inspection and regression checks.
package replay

import (
	"github.com/hcm-labs/hcm/internal/optimizer"
	"github.com/hcm-labs/hcm/internal/weights"
)

// #region types

// Interaction is a single recorded optimization request.
type Interaction struct {
	TaskType string  `json:"task_type"`
	Baseline float64 `json:"baseline"`
}

// Result captures the outcome of replaying one interaction.
type Result struct {
	TaskType           string
	Baseline           float64
	Optimized          float64
	ImprovementPercent float64
	Err                error
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns     int
	Improved       int
	Degraded       int
	Rejected       int
	FinalWeights   weights.Weights
	WeightsInBound bool
}

// #endregion types

// #region replay

// Run feeds interactions through the optimizer in order, learning from
// each. Invalid interactions are rejected and counted, not skipped
// silently; the run continues with the next interaction.
func Run(opt *optimizer.Optimizer, interactions []Interaction) ([]Result, Summary) {
	results := make([]Result, 0, len(interactions))
	summary := Summary{TotalTurns: len(interactions)}

	for _, inter := range interactions {
		res, err := opt.Compute(inter.Baseline, inter.TaskType, true)
		if err != nil {
			summary.Rejected++
			results = append(results, Result{
				TaskType: inter.TaskType,
				Baseline: inter.Baseline,
				Err:      err,
			})
			continue
		}

		if res.Optimized > inter.Baseline {
			summary.Improved++
		} else {
			summary.Degraded++
		}
		results = append(results, Result{
			TaskType:           inter.TaskType,
			Baseline:           inter.Baseline,
			Optimized:          res.Optimized,
			ImprovementPercent: res.ImprovementPercent,
		})
	}

	summary.FinalWeights = opt.Weights()
	summary.WeightsInBound = summary.FinalWeights.InBounds()
	return results, summary
}

// #endregion replay
