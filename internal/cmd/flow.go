package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hcm-labs/hcm/internal/analyze"
	"github.com/hcm-labs/hcm/internal/flow"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Run the circulation pipeline demo",
	RunE:  runFlow,
}

func init() {
	rootCmd.AddCommand(flowCmd)
}

func runFlow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flowCfg := flow.DefaultConfig()
	if cfg.Flow.HeartRate > 0 {
		flowCfg.HeartRate = cfg.Flow.HeartRate
	}

	circ := flow.New(flowCfg)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	circ.Start(ctx)
	defer circ.Stop()

	payloads := []struct {
		destination string
		content     analyze.Content
	}{
		{"brain", analyze.Numeric([]float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233})},
		{"heart", analyze.Text("optimize neural performance with focus and awareness")},
		{"lungs", analyze.Structured(map[string]any{"coherence_index": 0.93, "load": 41.0})},
		{"liver", analyze.Text("raw sensor frame")},
		{"unknown-organ", analyze.Numeric([]float64{3, 6, 9})},
	}

	handles := make([]*flow.Handle, 0, len(payloads))
	for _, p := range payloads {
		h, err := circ.Inject(ctx, p.content, p.destination)
		if err != nil {
			return fmt.Errorf("inject to %s: %w", p.destination, err)
		}
		handles = append(handles, h)
	}

	for _, h := range handles {
		out, err := circ.Await(ctx, h, 30*time.Second)
		if err != nil {
			fmt.Printf("packet %s: %v\n", h.PacketID, err)
			continue
		}
		if out.Err != nil {
			fmt.Printf("packet %s via %s: rejected: %v\n", out.PacketID, out.Organ, out.Err)
			continue
		}
		fmt.Printf("packet %s via %-8s insight=%s elapsed=%s\n",
			out.PacketID, out.Organ, out.Insight, out.Elapsed.Round(time.Microsecond))
		if out.Analysis != nil {
			fmt.Printf("   analysis: kind=%s size=%d patterns=%d\n",
				out.Analysis.Kind, out.Analysis.Size, len(out.Analysis.Patterns))
		}
	}

	// Let the circulation run out the configured beat count before reporting.
	beats := cfg.Flow.Beats
	if beats <= 0 {
		beats = 20
	}
	period := time.Minute / time.Duration(flowCfg.HeartRate)
	deadline := time.Now().Add(time.Duration(beats)*period + time.Second)
	for circ.Vitals().Beats < beats && time.Now().Before(deadline) {
		time.Sleep(period)
	}

	v := circ.Vitals()
	fmt.Printf("\nVitals: beats=%d injected=%d processed=%d dropped=%d failed=%d\n",
		v.Beats, v.Injected, v.Processed, v.Dropped, v.Failed)
	return nil
}
