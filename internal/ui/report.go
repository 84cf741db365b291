package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Aman-CERP/joinindex/internal/telemetry"
)

// ReportRenderer displays stored bench runs.
type ReportRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewReportRenderer creates a report renderer.
func NewReportRenderer(out io.Writer, noColor bool) *ReportRenderer {
	return &ReportRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// RenderList prints one line per run, newest first as given.
func (r *ReportRenderer) RenderList(runs []telemetry.Run) error {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(r.out, "No runs recorded yet. Run 'joinindex bench' first.")
		return nil
	}

	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(fmt.Sprintf("Recorded runs (%d)", len(runs))))
	for _, run := range runs {
		best := 0.0
		for _, res := range run.Results {
			best = max(best, res.OpsPerSecond())
		}
		_, _ = fmt.Fprintf(r.out, "  %s  %-6s  %-16s  %2d results  best %s\n",
			r.styles.Active.Render(shortID(run.ID)), run.Command, formatTime(run.StartedAt),
			len(run.Results), FormatRate(best))
	}
	return nil
}

// Render prints the full detail of one run.
func (r *ReportRenderer) Render(run *telemetry.Run) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Run "+run.ID))

	_, _ = fmt.Fprintf(r.out, "  Command:  %s\n", run.Command)
	_, _ = fmt.Fprintf(r.out, "  Started:  %s\n", formatTime(run.StartedAt))
	_, _ = fmt.Fprintf(r.out, "  Seed:     %d\n", run.Seed)
	_, _ = fmt.Fprintf(r.out, "  Workload: %d facts, %d moves\n", run.Facts, run.Moves)
	_, _ = fmt.Fprintln(r.out)

	rows := make([]ResultRow, 0, len(run.Results))
	for _, res := range run.Results {
		rows = append(rows, ResultRowFrom(res))
	}
	writeResultTable(r.out, rows)

	if len(run.HotKeys) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "  Hot keys:")
		for _, hk := range run.HotKeys {
			_, _ = fmt.Fprintf(r.out, "    %-28s %-24s %s\n", hk.Chain, hk.Key, r.styles.Speed.Render(fmt.Sprintf("%d", hk.Count)))
		}
	}

	unverified := 0
	for _, res := range run.Results {
		if res.Verified == 0 {
			unverified++
		}
	}
	if unverified > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, r.styles.Warning.Render(fmt.Sprintf("  ⚠ %d results ran without verification", unverified)))
	}

	return nil
}

// RenderComparison prints a comparison of two runs, one line per job.
func (r *ReportRenderer) RenderComparison(c *telemetry.Comparison) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(
		fmt.Sprintf("Comparing %s against baseline %s", shortID(c.CurrentID), shortID(c.BaselineID))))

	_, _ = fmt.Fprintf(r.out, "  %-18s %-8s %12s %12s %9s  %s\n",
		"SCENARIO", "BACKEND", "BASELINE", "CURRENT", "DELTA", "STATUS")
	for _, d := range c.Deltas {
		baseline, current, delta := "-", "-", "-"
		if d.Status != telemetry.StatusNew {
			baseline = FormatRate(d.Baseline)
		}
		if d.Status != telemetry.StatusMissing {
			current = FormatRate(d.Current)
		}
		if d.Status != telemetry.StatusNew && d.Status != telemetry.StatusMissing {
			delta = fmt.Sprintf("%+.1f%%", d.DeltaPct)
		}
		_, _ = fmt.Fprintf(r.out, "  %-18s %-8s %12s %12s %9s  %s\n",
			d.Scenario, d.Backend, baseline, current, delta, r.status(d))
	}

	_, _ = fmt.Fprintln(r.out)
	if !c.SameWorkload {
		_, _ = fmt.Fprintln(r.out, r.styles.Dim.Render("  runs used different workloads; matches were not compared"))
	}
	if c.Failed() {
		_, _ = fmt.Fprintln(r.out, r.styles.Error.Render(
			fmt.Sprintf("  ✗ %d regressions beyond %.0f%%", c.Regressions, c.Threshold*100)))
	} else {
		_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("  ✓ no significant regressions"))
	}
	return nil
}

func (r *ReportRenderer) status(d telemetry.ResultDelta) string {
	if d.MatchesDiffer {
		return r.styles.Error.Render("MATCHES DIFFER")
	}
	switch d.Status {
	case telemetry.StatusRegression:
		return r.styles.Error.Render("REGRESSED")
	case telemetry.StatusImproved:
		return r.styles.Success.Render("FASTER")
	case telemetry.StatusNew:
		return r.styles.Active.Render("NEW")
	case telemetry.StatusMissing:
		return r.styles.Warning.Render("MISSING")
	default:
		return "ok"
	}
}

// RenderJSON outputs v as indented JSON.
func (r *ReportRenderer) RenderJSON(v any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// ResultRowFrom converts a stored result into a summary row.
func ResultRowFrom(res telemetry.ScenarioResult) ResultRow {
	return ResultRow{
		Scenario:  res.Scenario,
		Backend:   res.Backend,
		Chains:    len(res.Chains),
		Moves:     res.Moves,
		Matches:   res.Matches,
		Verified:  res.Verified,
		Elapsed:   res.Elapsed,
		OpsPerSec: res.OpsPerSecond(),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatRate formats an operations-per-second figure.
func FormatRate(perSec float64) string {
	switch {
	case perSec >= 1e6:
		return fmt.Sprintf("%.1fM/s", perSec/1e6)
	case perSec >= 1e3:
		return fmt.Sprintf("%.1fk/s", perSec/1e3)
	default:
		return fmt.Sprintf("%.0f/s", perSec)
	}
}
