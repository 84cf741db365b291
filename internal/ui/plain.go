package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	stages  map[string]Stage
	errors  []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		noColor: cfg.NoColor,
		stages:  make(map[string]Stage),
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Scenario != "" {
		r.stages[event.Scenario] = event.Stage
	}

	// Format: [STAGE] current/total - scenario: message
	msg := event.Scenario
	if event.Message != "" {
		if msg != "" {
			msg += ": "
		}
		msg += event.Message
	}

	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}

	if event.Scenario != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.Scenario, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d jobs, %d moves each in %s",
		stats.Jobs, stats.Moves, stats.Duration.Round(100*time.Millisecond))

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}
	_, _ = fmt.Fprintln(r.out)

	if len(stats.Results) > 0 {
		_, _ = fmt.Fprintln(r.out)
		writeResultTable(r.out, stats.Results)
	}

	if stats.RunID != "" {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintf(r.out, "Run: %s\n", stats.RunID)
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

// writeResultTable prints one aligned row per finished job.
func writeResultTable(w io.Writer, rows []ResultRow) {
	_, _ = fmt.Fprintf(w, "  %-18s %-8s %6s %10s %12s %8s %10s\n",
		"SCENARIO", "BACKEND", "CHAINS", "MATCHES", "OPS/SEC", "CHECKS", "ELAPSED")
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "  %-18s %-8s %6d %10d %12s %8d %10s\n",
			row.Scenario, row.Backend, row.Chains, row.Matches,
			FormatRate(row.OpsPerSec), row.Verified, row.Elapsed.Round(time.Millisecond))
	}
}
