package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/telemetry"
	"github.com/Aman-CERP/joinindex/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var (
		jsonOutput bool
		noColor    bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "stats [run-id]",
		Short: "Show recorded bench and check runs",
		Long: `Without arguments, list the most recent runs in the run store.
With a run ID (or a unique prefix of one), show that run in detail:
per-job throughput, matches, verification checks and the most-queried
keys.`,
		Example: `  joinindex stats
  joinindex stats 4f1c2d3e
  joinindex stats --json --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runStats(cmd.Context(), cmd, id, limit, jsonOutput, noColor || ui.DetectNoColor())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")

	return cmd
}

func runStats(ctx context.Context, cmd *cobra.Command, id string, limit int, jsonOutput, noColor bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	report := ui.NewReportRenderer(cmd.OutOrStdout(), noColor)

	store, err := openExistingStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		if jsonOutput {
			return report.RenderJSON([]telemetry.Run{})
		}
		return report.RenderList(nil)
	}
	defer func() { _ = store.Close() }()

	if id != "" {
		run, err := store.GetRun(ctx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return report.RenderJSON(run)
		}
		return report.Render(run)
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if runs == nil {
			runs = []telemetry.Run{}
		}
		return report.RenderJSON(runs)
	}
	return report.RenderList(runs)
}

// openExistingStore opens the configured run store, or returns nil when no
// run was ever recorded.
func openExistingStore(cfg *config.Config) (*telemetry.RunStore, error) {
	if _, err := os.Stat(cfg.Telemetry.DBPath); os.IsNotExist(err) {
		return nil, nil
	}
	return telemetry.OpenRunStore(cfg.Telemetry.DBPath)
}
