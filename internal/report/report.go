// Package report renders human-readable summaries of optimization results.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hcm-labs/hcm/internal/brain"
	"github.com/hcm-labs/hcm/internal/optimizer"
	"github.com/hcm-labs/hcm/internal/profile"
)

// #region optimization-report

// Optimization renders a detailed report for a single optimization result.
func Optimization(res optimizer.Result, prof profile.Profile, data brain.Data, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Optimization Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Profile\n")
	fmt.Fprintf(&b, "- Level: %s\n", prof.Level)
	fmt.Fprintf(&b, "- Composite Score: %.3f\n", prof.Composite)
	fmt.Fprintf(&b, "- Coherence: %.3f\n", prof.Coherence)
	fmt.Fprintf(&b, "- Complexity: %.3f\n", prof.Complexity)
	fmt.Fprintf(&b, "- Integration: %.3f\n", prof.Integration)
	fmt.Fprintf(&b, "- Alpha Dominance: %.3f\n\n", prof.AlphaDominance)

	fmt.Fprintf(&b, "## Performance\n")
	fmt.Fprintf(&b, "- Task Type: %s\n", res.TaskType)
	fmt.Fprintf(&b, "- Baseline: %s\n", humanize.CommafWithDigits(res.Baseline, 2))
	fmt.Fprintf(&b, "- Optimized: %s\n", humanize.CommafWithDigits(res.Optimized, 2))
	fmt.Fprintf(&b, "- Improvement: %+.1f%%\n\n", res.ImprovementPercent)

	fmt.Fprintf(&b, "## Enhancement Breakdown\n")
	fmt.Fprintf(&b, "- Profile Multiplier: %.3fx\n", res.Multipliers.Profile)
	fmt.Fprintf(&b, "- Task Multiplier: %.3fx\n", res.Multipliers.Task)
	fmt.Fprintf(&b, "- Signal Multiplier: %.3fx\n\n", res.Multipliers.Signal)

	fmt.Fprintf(&b, "## Signal Metrics\n")
	for _, name := range []string{"alpha_src", "alpha_tgt", "alpha_gate"} {
		if v, ok := data.EEG[name]; ok {
			fmt.Fprintf(&b, "- %s: %.3f\n", name, v)
		}
	}
	if v, ok := data.EEG["delta_S"]; ok {
		fmt.Fprintf(&b, "- delta_S: %.6f\n", v)
	}
	if v, ok := data.EEG["hsl_mix"]; ok {
		fmt.Fprintf(&b, "- hsl_mix: %.3f\n", v)
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "## Transfer Compatibility\n")
	fmt.Fprintf(&b, "- Decision: %s\n", data.Compat.Decision)
	fmt.Fprintf(&b, "- Margin: %.3f\n", data.Compat.Margin)

	return b.String()
}

// #endregion optimization-report

// #region summary-report

// LearningSummary renders the learning progress summary.
func LearningSummary(s optimizer.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Learning Summary\n")
	fmt.Fprintf(&b, "- Iterations: %d\n", s.Iterations)
	fmt.Fprintf(&b, "- Records Retained: %d\n", s.Records)
	fmt.Fprintf(&b, "- Patterns Learned: %d\n", s.PatternsLearned)
	fmt.Fprintf(&b, "- Level: %s (%.3f)\n", s.Level, s.Composite)
	fmt.Fprintf(&b, "- Weights: profile=%.3f task=%.3f signal=%.3f\n",
		s.Weights.Profile, s.Weights.Task, s.Weights.Signal)
	if s.RecentAvgRatio > 0 {
		fmt.Fprintf(&b, "- Recent Average Ratio: %.3f\n", s.RecentAvgRatio)
	}

	if len(s.Tasks) > 0 {
		fmt.Fprintf(&b, "\n## Task Performance\n")
		for task, ts := range s.Tasks {
			fmt.Fprintf(&b, "- %s: best=%.3f avg=%.3f runs=%d\n",
				task, ts.BestRatio, ts.AvgRatio, ts.Runs)
		}
	}

	return b.String()
}

// #endregion summary-report
