// Package cmd wires the hcmctl command tree.
package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/hcm-labs/hcm/internal/config"
	"github.com/hcm-labs/hcm/internal/memory"
	"github.com/hcm-labs/hcm/internal/optimizer"
	"github.com/hcm-labs/hcm/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "hcmctl",
	Short: "Adaptive performance optimizer control tool",
	Long: `hcmctl drives the adaptive performance optimizer: compute enhanced
baselines, analyze external data, inspect learned state, and replay
recorded runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the CLI configuration once per command run.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newOptimizer builds an optimizer (and optional store) from the resolved
// config. The caller owns closing the returned store when non-nil.
func newOptimizer(cfg config.Config, withStore bool) (*optimizer.Optimizer, *store.Store, error) {
	optCfg := optimizer.DefaultConfig()
	optCfg.UseRealData = cfg.Data.UseRealData
	optCfg.LearningEnabled = cfg.Learning.Enabled
	optCfg.Memory = memory.Config{
		MaxRecords:  cfg.Learning.MaxRecords,
		MaxPatterns: cfg.Learning.MaxPatterns,
	}
	optCfg.PatternCap = cfg.Learning.PatternCap
	if !cfg.Data.UseRealData {
		optCfg.Rand = rand.New(rand.NewSource(cfg.Data.Seed))
	}

	var st *store.Store
	if withStore && cfg.Store.DBPath != "" {
		var err error
		st, err = store.New(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		optCfg.Store = st
	}

	opt, err := optimizer.New(optCfg)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}
	return opt, st, nil
}
