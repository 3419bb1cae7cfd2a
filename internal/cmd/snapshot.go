package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hcm-labs/hcm/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save or load a configuration snapshot",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Write the current profile and signal set to a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Load a snapshot and show the restored profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotLoad,
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotLoadCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opt, _, err := newOptimizer(cfg, false)
	if err != nil {
		return err
	}

	if err := snapshot.Save(args[0], opt.Snapshot()); err != nil {
		return err
	}
	fmt.Printf("Snapshot saved to %s\n", args[0])
	return nil
}

func runSnapshotLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opt, _, err := newOptimizer(cfg, false)
	if err != nil {
		return err
	}

	snap, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}
	opt.Restore(snap)

	prof := opt.Profile()
	fmt.Printf("Restored profile: %s (%.4f)\n", prof.Level, prof.Composite)
	fmt.Printf("  coherence=%.4f complexity=%.4f integration=%.4f alpha=%.4f\n",
		prof.Coherence, prof.Complexity, prof.Integration, prof.AlphaDominance)
	fmt.Printf("  transitions retained: %d (the snapshot format does not carry them)\n",
		len(opt.Data().States))
	return nil
}
