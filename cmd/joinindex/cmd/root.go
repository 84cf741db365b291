// Package cmd provides the CLI commands for joinindex.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/internal/logging"
	"github.com/Aman-CERP/joinindex/internal/profiling"
	"github.com/Aman-CERP/joinindex/pkg/version"
)

// Profiling flags
var (
	profileOpts    profiling.Options
	profileSession *profiling.Session
)

// Logging and project flags
var (
	debugMode      bool
	projectDir     string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the joinindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joinindex",
		Short: "Benchmark and verify incremental join indexes",
		Long: `joinindex drives the incremental join-index chains through a
timetabling workload: lessons are inserted, then repeatedly retracted,
moved and reinserted while the chains are queried for conflicts.

Every run can be cross-checked against a naive scan and is stored in a
local SQLite database for later comparison.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetVersionTemplate("joinindex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write heap profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Allocs, "profile-allocs", "", "Write allocations profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Block, "profile-block", "", "Write block profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.joinindex/logs/")
	cmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Directory to search for .joinindex.yaml")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts profiling and debug logging if flags are set.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.Config{Level: "warn", WriteToStderr: true}
	if debugMode {
		cfg = logging.DebugConfig()
		// Keep the terminal for the progress display.
		cfg.WriteToStderr = false
	}
	if err := setLogger(cfg); err != nil {
		return err
	}
	if debugMode {
		slog.Info("debug_logging_enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Version))
	}

	if profileOpts.Enabled() {
		session, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profileSession = session
	}
	return nil
}

// stopProfilingAndLogging stops profiling, writes snapshot profiles and
// closes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profileSession != nil {
		err = profileSession.Stop()
		profileSession = nil
	}

	if loggingCleanup != nil {
		slog.Debug("debug_logging_stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// setLogger installs a logger for cfg as the slog default, closing any log
// file opened earlier.
func setLogger(cfg logging.Config) error {
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if loggingCleanup != nil {
		loggingCleanup()
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the merged configuration for the project containing
// --dir. Outside debug mode a configured log file replaces stderr logging.
func loadConfig() (*config.Config, error) {
	root, err := config.FindProjectRoot(projectDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	if !debugMode && cfg.Logging.FilePath != "" {
		if err := setLogger(logging.Config{
			Level:     cfg.Logging.Level,
			FilePath:  cfg.Logging.FilePath,
			MaxSizeMB: cfg.Logging.MaxSizeMB,
			MaxFiles:  cfg.Logging.MaxFiles,
		}); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}
