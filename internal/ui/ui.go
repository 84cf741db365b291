// Package ui provides terminal UI components for bench progress and run reports.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage represents the phase a bench job is in.
type Stage int

const (
	// StageGenerating builds the deterministic workload.
	StageGenerating Stage = iota
	// StageInserting loads every fact into both chains.
	StageInserting
	// StageMoving retracts, mutates and reinserts facts while querying.
	StageMoving
	// StageVerifying cross-checks the chains against a naive scan.
	StageVerifying
	// StageComplete indicates the job is done.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageGenerating:
		return "Generating"
	case StageInserting:
		return "Inserting"
	case StageMoving:
		return "Moving"
	case StageVerifying:
		return "Verifying"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage icon for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageGenerating:
		return "GEN"
	case StageInserting:
		return "INSERT"
	case StageMoving:
		return "MOVE"
	case StageVerifying:
		return "VERIFY"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent represents a progress update from one bench job.
// Current and Total count moves across the whole run, so concurrent jobs
// report against the same scale.
type ProgressEvent struct {
	Stage    Stage
	Scenario string // job label, e.g. "mixed/indexed"
	Current  int
	Total    int
	Message  string
}

// ErrorEvent represents an error reported by a bench job.
type ErrorEvent struct {
	Scenario string
	Err      error
	IsWarn   bool
}

// ResultRow is one finished job in the completion summary.
type ResultRow struct {
	Scenario  string
	Backend   string
	Chains    int
	Moves     int
	Matches   int64
	Verified  int
	Elapsed   time.Duration
	OpsPerSec float64
}

// CompletionStats contains the final bench summary.
type CompletionStats struct {
	RunID    string
	Jobs     int
	Moves    int
	Duration time.Duration
	Errors   int
	Warnings int
	Results  []ResultRow
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output       io.Writer
	ForcePlain   bool
	NoColor      bool
	SpinnerStyle string
	Title        string // shown in the TUI panel header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithSpinnerStyle sets the spinner style.
func WithSpinnerStyle(style string) ConfigOption {
	return func(c *Config) {
		c.SpinnerStyle = style
	}
}

// WithTitle sets the panel header text.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:       output,
		SpinnerStyle: "dots",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// NewRenderer creates an appropriate renderer based on config and environment.
// It returns a TUI renderer for interactive terminals, and a plain text
// renderer for CI environments, pipes, or when --plain is specified.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain {
		return NewPlainRenderer(cfg)
	}

	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}

	if DetectCI() {
		return NewPlainRenderer(cfg)
	}

	// Try TUI mode, fall back to plain on failure
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}

	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
