package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/telemetry"
	"github.com/Aman-CERP/joinindex/internal/ui"
	"github.com/Aman-CERP/joinindex/pkg/index"
)

// Check mode sizes: small enough to finish in seconds, verified often.
const (
	checkFacts       = 300
	checkMoves       = 3000
	checkVerifyEvery = 100
)

// RunnerConfig selects what a run executes.
type RunnerConfig struct {
	Scenarios   []Scenario
	Backends    []index.Backend
	Workload    Workload
	Facts       int
	Moves       int
	VerifyEvery int
	Seed        uint64
	// Parallelism bounds concurrently running jobs. 0 means NumCPU.
	Parallelism int
}

// BenchRunnerConfig builds the bench run described by cfg.
func BenchRunnerConfig(cfg config.BenchConfig) (RunnerConfig, error) {
	scenarios, err := LookupScenarios(cfg.Scenarios)
	if err != nil {
		return RunnerConfig{}, err
	}
	backends, err := parseBackends(cfg.Backends)
	if err != nil {
		return RunnerConfig{}, err
	}
	return RunnerConfig{
		Scenarios:   scenarios,
		Backends:    backends,
		Workload:    NewWorkload(cfg),
		Facts:       cfg.Facts,
		Moves:       cfg.Moves,
		VerifyEvery: cfg.VerifyEvery,
		Seed:        cfg.Seed,
		Parallelism: cfg.Parallelism,
	}, nil
}

// CheckRunnerConfig builds a verification run over every joiner type and
// both backends, keeping only the seed, workload and parallelism of cfg.
func CheckRunnerConfig(cfg config.BenchConfig) RunnerConfig {
	return RunnerConfig{
		Scenarios:   CheckScenarios(),
		Backends:    []index.Backend{index.LinkedBackend, index.IndexedBackend},
		Workload:    NewWorkload(cfg),
		Facts:       checkFacts,
		Moves:       checkMoves,
		VerifyEvery: checkVerifyEvery,
		Seed:        cfg.Seed,
		Parallelism: cfg.Parallelism,
	}
}

func parseBackends(names []string) ([]index.Backend, error) {
	out := make([]index.Backend, 0, len(names))
	seen := make(map[index.Backend]bool)
	for _, name := range names {
		b, err := index.ParseBackend(name)
		if err != nil {
			return nil, err
		}
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out, nil
}

// RunnerResult contains the outcome of a run.
type RunnerResult struct {
	// Results holds one entry per job, ordered by scenario then backend.
	Results []telemetry.ScenarioResult

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}

// CompletionStats summarizes the result for a renderer.
func (r *RunnerResult) CompletionStats(runID string, moves int) ui.CompletionStats {
	rows := make([]ui.ResultRow, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, ui.ResultRowFrom(res))
	}
	return ui.CompletionStats{
		RunID:    runID,
		Jobs:     len(r.Results),
		Moves:    moves,
		Duration: r.Duration,
		Results:  rows,
	}
}

// RunnerDependencies contains the injected dependencies for Runner.
type RunnerDependencies struct {
	// Renderer for progress display (required).
	Renderer ui.Renderer

	// Observer receives every chain operation. Optional.
	Observer index.Observer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Runner executes bench jobs concurrently with progress reporting. Each job
// owns its chains, so chains are never shared between goroutines.
type Runner struct {
	renderer ui.Renderer
	observer index.Observer
	logger   *slog.Logger
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(deps RunnerDependencies) (*Runner, error) {
	if deps.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		renderer: deps.Renderer,
		observer: deps.Observer,
		logger:   logger,
	}, nil
}

// Run executes every scenario on every backend. The first failing job cancels
// the others and its error is returned.
func (r *Runner) Run(ctx context.Context, cfg RunnerConfig) (*RunnerResult, error) {
	if len(cfg.Scenarios) == 0 || len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("nothing to run: %d scenarios, %d backends", len(cfg.Scenarios), len(cfg.Backends))
	}
	if cfg.Facts <= 0 {
		return nil, fmt.Errorf("facts must be positive, got %d", cfg.Facts)
	}

	start := time.Now()
	jobs := r.plan(cfg)
	total := len(jobs) * cfg.Moves
	var moved atomic.Int64

	r.logger.Info("bench_run_started",
		slog.Int("jobs", len(jobs)),
		slog.Int("facts", cfg.Facts),
		slog.Int("moves", cfg.Moves),
		slog.Uint64("seed", cfg.Seed))
	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageGenerating,
		Total:   total,
		Message: fmt.Sprintf("%d jobs, %d facts, %d moves each", len(jobs), cfg.Facts, cfg.Moves),
	})

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]telemetry.ScenarioResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, j := range jobs {
		label := j.label()
		j.report = func(stage ui.Stage, n int, msg string) {
			r.renderer.UpdateProgress(ui.ProgressEvent{
				Stage:    stage,
				Scenario: label,
				Current:  int(moved.Add(int64(n))),
				Total:    total,
				Message:  msg,
			})
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := j.run(gctx)
			if err != nil {
				r.renderer.AddError(ui.ErrorEvent{Scenario: label, Err: err})
				r.logger.Error("bench_job_failed", slog.String("job", label), slog.String("error", err.Error()))
				return fmt.Errorf("%s: %w", label, err)
			}
			results[i] = res
			j.report(ui.StageComplete, 0, fmt.Sprintf("%s ops/s", ui.FormatRate(res.OpsPerSecond())))
			r.logger.Info("bench_job_complete",
				slog.String("job", label),
				slog.Int64("matches", res.Matches),
				slog.Float64("ops_per_sec", res.OpsPerSecond()),
				slog.Duration("elapsed", res.Elapsed))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &RunnerResult{Results: results, Duration: time.Since(start)}
	r.logger.Info("bench_run_complete",
		slog.Int("jobs", len(jobs)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// plan expands scenarios × backends into jobs.
func (r *Runner) plan(cfg RunnerConfig) []*job {
	jobs := make([]*job, 0, len(cfg.Scenarios)*len(cfg.Backends))
	for _, s := range cfg.Scenarios {
		for _, b := range cfg.Backends {
			jobs = append(jobs, &job{
				scenario:    s,
				backend:     b,
				workload:    cfg.Workload,
				facts:       cfg.Facts,
				moves:       cfg.Moves,
				verifyEvery: cfg.VerifyEvery,
				seed:        cfg.Seed,
				observer:    r.observer,
				logger:      r.logger,
			})
		}
	}
	return jobs
}
