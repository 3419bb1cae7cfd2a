package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hcm-labs/hcm/internal/report"
	"github.com/hcm-labs/hcm/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump stored optimizer state",
	RunE:  runInspect,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the learning summary",
	RunE:  runSummary,
}

var inspectLimit int

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 20, "rows shown per table")
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.DBPath == "" {
		return fmt.Errorf("no store configured")
	}
	st, err := store.New(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	nRecords, err := st.CountRecords()
	if err != nil {
		return err
	}
	nPatterns, err := st.CountPatterns()
	if err != nil {
		return err
	}
	fmt.Printf("Store: %s\n", cfg.Store.DBPath)
	fmt.Printf("Performance records: %d  Analysis patterns: %d\n\n", nRecords, nPatterns)

	records, err := st.RecentRecords(inspectLimit)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		fmt.Println("Recent records (newest first):")
		for _, r := range records {
			fmt.Printf("  %-10s base=%-12s ratio=%.3f level=%-11s %s\n",
				r.TaskType,
				humanize.CommafWithDigits(r.Baseline, 0),
				r.Ratio, r.Level,
				humanize.Time(r.Timestamp))
		}
		fmt.Println()
	}

	tasks, err := st.LoadTasks()
	if err != nil {
		return err
	}
	if len(tasks) > 0 {
		fmt.Println("Task memory:")
		for task, ts := range tasks {
			recent, err := st.DecayedAverage(task, 7*24)
			if err != nil {
				return err
			}
			fmt.Printf("  %-10s best=%.3f avg=%.3f runs=%-4d decayed_avg=%.3f\n",
				task, ts.BestRatio, ts.AvgRatio, ts.Runs, recent)
		}
		fmt.Println()
	}

	entries, err := st.RecentWeightLog(inspectLimit)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println("Weight adjustments (newest first):")
		for _, e := range entries {
			fmt.Printf("  %-10s profile=%.3f task=%.3f signal=%.3f  %s\n",
				e.Action, e.Weights.Profile, e.Weights.Task, e.Weights.Signal, e.Reason)
		}
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	// Seed the summary with persisted task stats when a store exists.
	if st != nil {
		tasks, err := st.LoadTasks()
		if err != nil {
			return err
		}
		if len(tasks) > 0 {
			fmt.Println("Persisted task memory:")
			for task, ts := range tasks {
				fmt.Printf("  %-10s best=%.3f avg=%.3f runs=%d\n",
					task, ts.BestRatio, ts.AvgRatio, ts.Runs)
			}
			fmt.Println()
		}
	}

	fmt.Print(report.LearningSummary(opt.Summarize()))
	return nil
}
