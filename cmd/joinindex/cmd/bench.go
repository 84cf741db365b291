package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/bench"
	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/output"
)

// benchOptions holds bench flags. Only flags the user set override the
// loaded configuration.
type benchOptions struct {
	runOptions

	scenarios   []string
	backends    []string
	facts       int
	moves       int
	seed        uint64
	parallel    int
	verifyEvery int
	watch       bool
}

func newBenchCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the timetabling workload against the join-index chains",
		Long: fmt.Sprintf(`Run every configured scenario on every configured backend.

Each job inserts the lessons, then moves them one at a time: the lesson is
retracted from both chains, given a new room, day, slot or skill set, and
reinserted. After each move the chains are queried for lessons that now
conflict with it and a few swap candidates are drawn.

Scenarios: %s
Backends:  linked, indexed

Results are stored in the run store unless --no-save is given; see
'joinindex stats' and 'joinindex compare'.`, strings.Join(bench.ScenarioNames(), ", ")),
		Example: `  # Run the configured workload
  joinindex bench

  # One scenario, bigger workload, plain output
  joinindex bench --scenario mixed --facts 10000 --moves 100000 --plain

  # Re-run whenever .joinindex.yaml changes
  joinindex bench --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.scenarios, "scenario", nil, "Scenario to run (repeatable)")
	cmd.Flags().StringSliceVar(&opts.backends, "backend", nil, "Backend to run: linked or indexed (repeatable)")
	cmd.Flags().IntVar(&opts.facts, "facts", 0, "Lessons inserted before moves start")
	cmd.Flags().IntVar(&opts.moves, "moves", 0, "Moves per job")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "j", 0, "Concurrent jobs (0 = all CPUs)")
	cmd.Flags().IntVar(&opts.verifyEvery, "verify-every", 0, "Cross-check every N moves (0 disables)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run when a config file changes")
	opts.addFlags(cmd)

	return cmd
}

// applyBenchFlags copies explicitly set flags onto cfg and revalidates it.
func applyBenchFlags(cmd *cobra.Command, cfg *config.Config, opts benchOptions) error {
	flags := cmd.Flags()
	if flags.Changed("scenario") {
		cfg.Bench.Scenarios = opts.scenarios
	}
	if flags.Changed("backend") {
		cfg.Bench.Backends = opts.backends
	}
	if flags.Changed("facts") {
		cfg.Bench.Facts = opts.facts
	}
	if flags.Changed("moves") {
		cfg.Bench.Moves = opts.moves
	}
	if flags.Changed("seed") {
		cfg.Bench.Seed = opts.seed
	}
	if flags.Changed("parallel") {
		cfg.Bench.Parallelism = opts.parallel
	}
	if flags.Changed("verify-every") {
		cfg.Bench.VerifyEvery = opts.verifyEvery
	}
	return cfg.Validate()
}

func runBench(ctx context.Context, cmd *cobra.Command, opts benchOptions) error {
	once := func() error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyBenchFlags(cmd, cfg, opts); err != nil {
			return err
		}
		rc, err := bench.BenchRunnerConfig(cfg.Bench)
		if err != nil {
			return err
		}
		_, err = executeRun(ctx, cmd.OutOrStdout(), cfg, rc, "bench", opts.runOptions)
		return err
	}

	if !opts.watch {
		return once()
	}

	out := output.New(cmd.OutOrStdout())
	if err := once(); err != nil {
		out.Error(err.Error())
	}

	root, err := config.FindProjectRoot(projectDir)
	if err != nil {
		return err
	}
	paths := []string{
		config.GetUserConfigPath(),
		filepath.Join(root, config.ProjectConfigName),
		filepath.Join(root, config.ProjectConfigAltName),
	}
	out.Status("", "Watching "+strings.Join(paths, ", ")+" (Ctrl+C to stop)")

	return watchConfig(ctx, paths, 300*time.Millisecond, func(changed string) {
		slog.Info("config_changed", slog.String("path", changed))
		out.Newline()
		out.Statusf("↻", "%s changed, re-running", changed)
		if err := once(); err != nil {
			out.Error(err.Error())
		}
	})
}
