package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hcm-labs/hcm/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [baseline] [task-type]",
	Short: "Generate a detailed optimization report",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	baseline := 3779.0
	taskType := "mining"
	if len(args) >= 1 {
		baseline, err = strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parse baseline %q: %w", args[0], err)
		}
	}
	if len(args) == 2 {
		taskType = args[1]
	}

	res, err := opt.Compute(baseline, taskType, true)
	if err != nil {
		return err
	}

	fmt.Print(report.Optimization(res, opt.Profile(), opt.Data(), time.Now()))
	return nil
}
