package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// canonical demo scenarios, run when no baseline is given.
var demoScenarios = []struct {
	name     string
	baseline float64
	taskType string
}{
	{"Cryptocurrency Mining", 3779, "mining"},
	{"AI Processing", 1000, "ai"},
	{"General Computing", 2500, "general"},
	{"Nuclear Calculations", 500, "nuclear"},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [baseline] [task-type]",
	Short: "Compute an optimized performance value",
	Long: `Optimize a baseline performance value for a task type. With no
arguments the four canonical demo scenarios are run.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runOptimize,
}

var optimizeNoLearn bool

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeNoLearn, "no-learn", false, "skip the learning update")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opt, st, err := newOptimizer(cfg, true)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	if len(args) == 0 {
		fmt.Printf("Profile: %s (%.3f)\n\n", opt.Profile().Level, opt.Profile().Composite)
		for _, sc := range demoScenarios {
			res, err := opt.Compute(sc.baseline, sc.taskType, !optimizeNoLearn)
			if err != nil {
				return err
			}
			fmt.Printf("%-22s | %10s -> %10s (%+5.1f%%)\n",
				sc.name,
				humanize.CommafWithDigits(res.Baseline, 0),
				humanize.CommafWithDigits(res.Optimized, 0),
				res.ImprovementPercent)
		}
		return nil
	}

	baseline, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parse baseline %q: %w", args[0], err)
	}
	taskType := "general"
	if len(args) == 2 {
		taskType = args[1]
	}

	res, err := opt.Compute(baseline, taskType, !optimizeNoLearn)
	if err != nil {
		return err
	}

	fmt.Printf("Task: %s\n", res.TaskType)
	fmt.Printf("Baseline:  %s\n", humanize.CommafWithDigits(res.Baseline, 2))
	fmt.Printf("Optimized: %s (%+.1f%%)\n", humanize.CommafWithDigits(res.Optimized, 2), res.ImprovementPercent)
	fmt.Printf("Multipliers: profile=%.4f task=%.4f signal=%.4f\n",
		res.Multipliers.Profile, res.Multipliers.Task, res.Multipliers.Signal)
	fmt.Printf("Weights: profile=%.3f task=%.3f signal=%.3f\n",
		res.Weights.Profile, res.Weights.Task, res.Weights.Signal)
	return nil
}
