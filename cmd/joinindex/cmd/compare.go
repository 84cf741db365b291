package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/internal/telemetry"
	"github.com/Aman-CERP/joinindex/internal/ui"
)

func newCompareCmd() *cobra.Command {
	var (
		jsonOutput bool
		noColor    bool
		threshold  float64
	)

	cmd := &cobra.Command{
		Use:   "compare <baseline-id> [current-id]",
		Short: "Compare the throughput of two recorded runs",
		Long: fmt.Sprintf(`Compare each scenario/backend job of a run against a baseline run.
The current run defaults to the most recent one.

A job regresses when its throughput drops by more than --threshold
(default %.0f%%). When both runs used the same seed and workload size, the
number of matches must also agree. Any regression or disagreement makes
the command fail, so it can gate CI.`, telemetry.DefaultRegressionThreshold*100),
		Example: `  joinindex compare 4f1c2d3e
  joinindex compare 4f1c2d3e 9e8d7c6b --threshold 0.1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current := ""
			if len(args) == 2 {
				current = args[1]
			}
			return runCompare(cmd.Context(), cmd, args[0], current, threshold, jsonOutput, noColor || ui.DetectNoColor())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().Float64Var(&threshold, "threshold", telemetry.DefaultRegressionThreshold, "Allowed throughput drop (0.0-1.0)")

	return cmd
}

func runCompare(ctx context.Context, cmd *cobra.Command, baselineID, currentID string, threshold float64, jsonOutput, noColor bool) error {
	if threshold <= 0 || threshold >= 1 {
		return errors.ValidationError(fmt.Sprintf("threshold must be between 0 and 1, got %g", threshold), nil)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openExistingStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New(errors.ErrCodeResultsStore, "no runs recorded yet", nil).
			WithSuggestion("run 'joinindex bench' first")
	}
	defer func() { _ = store.Close() }()

	baseline, err := store.GetRun(ctx, baselineID)
	if err != nil {
		return err
	}
	current, err := latestOr(ctx, store, currentID)
	if err != nil {
		return err
	}

	c := telemetry.CompareRuns(baseline, current, threshold)
	report := ui.NewReportRenderer(cmd.OutOrStdout(), noColor)
	if jsonOutput {
		err = report.RenderJSON(c)
	} else {
		err = report.RenderComparison(c)
	}
	if err != nil {
		return err
	}
	if c.Failed() {
		return fmt.Errorf("run %s regressed against %s", current.ID, baseline.ID)
	}
	return nil
}

// latestOr loads the run with id, or the most recent run when id is empty.
func latestOr(ctx context.Context, store *telemetry.RunStore, id string) (*telemetry.Run, error) {
	if id != "" {
		return store.GetRun(ctx, id)
	}
	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New(errors.ErrCodeResultsStore, "no runs recorded yet", nil)
	}
	return store.GetRun(ctx, runs[0].ID)
}
