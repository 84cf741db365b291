package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/bench"
	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/internal/output"
)

type checkOptions struct {
	runOptions

	facts    int
	moves    int
	parallel int
	seed     uint64
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every joiner type on both backends",
		Long: `Run a small workload for each joiner type, and a five-level chain,
on both backends, cross-checking the chains against a naive scan every
100 moves and once more at the end.

A disagreement stops the run and reports the chain, probe lesson and
the tuples that were missing or unexpected.`,
		Example: `  joinindex check
  joinindex check --moves 20000 --seed 7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.facts, "facts", 0, "Lessons per job (default 300)")
	cmd.Flags().IntVar(&opts.moves, "moves", 0, "Moves per job (default 3000)")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "j", 0, "Concurrent jobs (0 = all CPUs)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (default from config)")
	opts.addFlags(cmd)

	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, opts checkOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Bench.Seed = opts.seed
	}
	if flags.Changed("parallel") {
		cfg.Bench.Parallelism = opts.parallel
	}

	rc := bench.CheckRunnerConfig(cfg.Bench)
	if flags.Changed("facts") {
		rc.Facts = opts.facts
	}
	if flags.Changed("moves") {
		rc.Moves = opts.moves
	}

	out := output.New(cmd.OutOrStdout())
	run, err := executeRun(ctx, cmd.OutOrStdout(), cfg, rc, "check", opts.runOptions)
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeVerificationFailed && !opts.jsonOutput {
			out.Error("chains disagree with the naive scan")
		}
		return err
	}
	if opts.jsonOutput {
		return nil
	}

	checks := 0
	for _, res := range run.Results {
		checks += res.Verified
	}
	out.Successf("%d jobs verified (%d checks, seed %d)", len(run.Results), checks, run.Seed)
	return nil
}

