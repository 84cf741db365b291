package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/bench"
	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/output"
	"github.com/Aman-CERP/joinindex/internal/profiling"
	"github.com/Aman-CERP/joinindex/internal/telemetry"
	"github.com/Aman-CERP/joinindex/internal/ui"
)

// runOptions controls how a bench or check run is displayed and recorded.
type runOptions struct {
	plain      bool
	noColor    bool
	jsonOutput bool
	noSave     bool
	promOut    string
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Plain text progress (no TUI)")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "Print the finished run as JSON instead of progress")
	cmd.Flags().BoolVar(&o.noSave, "no-save", false, "Do not record the run in the run store")
	cmd.Flags().StringVar(&o.promOut, "prom-out", "", "Write chain metrics in Prometheus text format to file")
}

// executeRun runs rc, reports progress and the summary, stores the run and
// writes requested metric files.
func executeRun(ctx context.Context, out io.Writer, cfg *config.Config, rc bench.RunnerConfig, command string, opts runOptions) (*telemetry.Run, error) {
	noColor := opts.noColor || ui.DetectNoColor()

	var renderer ui.Renderer
	if opts.jsonOutput {
		renderer = ui.NewPlainRenderer(ui.NewConfig(io.Discard))
	} else {
		renderer = ui.NewRenderer(ui.NewConfig(out,
			ui.WithForcePlain(opts.plain),
			ui.WithNoColor(noColor),
			ui.WithTitle("joinindex "+command)))
	}

	deps := bench.RunnerDependencies{Renderer: renderer, Logger: slog.Default()}
	var metrics *telemetry.IndexMetrics
	if cfg.Telemetry.Enabled || opts.promOut != "" {
		metrics = telemetry.NewIndexMetrics(telemetry.MetricsConfig{HotKeysCapacity: cfg.Telemetry.HotKeys})
		deps.Observer = metrics
	}
	runner, err := bench.NewRunner(deps)
	if err != nil {
		return nil, err
	}

	if err := renderer.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start progress display: %w", err)
	}

	run := &telemetry.Run{
		ID:        telemetry.NewRunID(),
		Command:   command,
		StartedAt: time.Now(),
		Seed:      rc.Seed,
		Facts:     rc.Facts,
		Moves:     rc.Moves,
	}

	var res *bench.RunnerResult
	var runErr error
	usage := profiling.Measure(func() { res, runErr = runner.Run(ctx, rc) })
	if runErr != nil {
		_ = renderer.Stop()
		return nil, runErr
	}

	run.Results = res.Results
	if metrics != nil {
		run.AttachMetrics(metrics.Snapshot())
	}

	stats := res.CompletionStats(run.ID, rc.Moves)
	if opts.noSave || !cfg.Telemetry.Enabled {
		stats.RunID = ""
	} else if err := saveRun(ctx, cfg.Telemetry.DBPath, run); err != nil {
		slog.Warn("run_not_saved", slog.String("run_id", run.ID), slog.String("error", err.Error()))
		renderer.AddError(ui.ErrorEvent{Err: err, IsWarn: true})
		stats.Warnings++
		stats.RunID = ""
	}

	renderer.Complete(stats)
	if err := renderer.Stop(); err != nil {
		return nil, err
	}

	if opts.promOut != "" {
		if err := writePrometheus(opts.promOut, metrics); err != nil {
			return nil, err
		}
	}

	if opts.jsonOutput {
		return run, ui.NewReportRenderer(out, true).RenderJSON(run)
	}
	w := output.NewWithColor(out, !noColor)
	w.Field("Memory", 8, usage)
	if opts.promOut != "" {
		w.Field("Metrics", 8, opts.promOut)
	}
	return run, nil
}

func saveRun(ctx context.Context, path string, run *telemetry.Run) error {
	store, err := telemetry.OpenRunStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.SaveRun(ctx, run)
}

func writePrometheus(path string, metrics *telemetry.IndexMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := metrics.WritePrometheus(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return f.Close()
}
