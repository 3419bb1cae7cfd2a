package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hcm-labs/hcm/internal/optimizer"
	"github.com/hcm-labs/hcm/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded fixture through the optimizer",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

var exportCmd = &cobra.Command{
	Use:   "export <fixture.json>",
	Short: "Export stored history as a replay fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	fixture, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}
	if fixture.Description != "" {
		fmt.Printf("Fixture: %s\n\n", fixture.Description)
	}

	// The fixture pins the data mode so reruns are reproducible regardless
	// of local configuration.
	optCfg := optimizer.DefaultConfig()
	optCfg.UseRealData = fixture.RealData()
	if !optCfg.UseRealData {
		optCfg.Rand = rand.New(rand.NewSource(fixture.Seed))
	}
	opt, err := optimizer.New(optCfg)
	if err != nil {
		return err
	}

	results, summary := replay.Run(opt, fixture.Interactions)
	for i, r := range results {
		if r.Err != nil {
			fmt.Printf("%3d %-10s rejected: %v\n", i+1, r.TaskType, r.Err)
			continue
		}
		fmt.Printf("%3d %-10s %12.2f -> %12.2f (%+5.1f%%)\n",
			i+1, r.TaskType, r.Baseline, r.Optimized, r.ImprovementPercent)
	}

	fmt.Printf("\nTurns: %d  Improved: %d  Degraded: %d  Rejected: %d\n",
		summary.TotalTurns, summary.Improved, summary.Degraded, summary.Rejected)
	fmt.Printf("Final weights: profile=%.3f task=%.3f signal=%.3f (in bounds: %v)\n",
		summary.FinalWeights.Profile, summary.FinalWeights.Task,
		summary.FinalWeights.Signal, summary.WeightsInBound)

	if mismatches := fixture.Verify(results); len(mismatches) > 0 {
		for _, m := range mismatches {
			fmt.Printf("MISMATCH %s\n", m)
		}
		return fmt.Errorf("%d expectation(s) not met", len(mismatches))
	}
	if len(fixture.Expected) > 0 {
		fmt.Printf("All %d expectations met\n", len(fixture.Expected))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.DBPath == "" {
		return fmt.Errorf("no store configured")
	}
	_, st, err := newOptimizer(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.RecentRecords(cfg.Learning.MaxRecords)
	if err != nil {
		return err
	}

	// Oldest first so a replay reproduces the original order.
	interactions := make([]replay.Interaction, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		interactions = append(interactions, replay.Interaction{
			TaskType: records[i].TaskType,
			Baseline: records[i].Baseline,
		})
	}

	useReal := cfg.Data.UseRealData
	fixture := replay.Fixture{
		Description:  fmt.Sprintf("exported from %s at %s", cfg.Store.DBPath, time.Now().UTC().Format(time.RFC3339)),
		UseRealData:  &useReal,
		Seed:         cfg.Data.Seed,
		Interactions: interactions,
	}
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Printf("Exported %d interactions to %s\n", len(interactions), args[0])
	return nil
}
