package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer provides rich terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *benchModel
	tracker *ProgressTracker
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewProgressTracker()
	model := newBenchModel(tracker, cfg.Title)

	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   model,
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	opts = append(opts, tea.WithAltScreen(), tea.WithContext(r.ctx))

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.tracker.Update(event)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.tracker.AddError(event)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Quit()

		// Do not hang on an unresponsive terminal.
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	}

	if r.cancel != nil {
		r.cancel()
	}

	// The alternate screen is gone; leave the summary on the main screen.
	if summary := r.model.summary(); summary != "" {
		_, _ = fmt.Fprint(r.cfg.Output, summary)
	}
	return nil
}

// Message types for bubbletea
type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats
type tickMsg time.Time

// benchModel is the bubbletea model for bench progress.
type benchModel struct {
	mu          sync.Mutex
	tracker     *ProgressTracker
	width       int
	height      int
	quitting    bool
	complete    bool
	stats       CompletionStats
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
	title       string
}

func newBenchModel(tracker *ProgressTracker, title string) *benchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	if title == "" {
		title = "joinindex bench"
	}

	return &benchModel{
		tracker:     tracker,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       80,
		height:      24,
		title:       title,
	}
}

// Init implements tea.Model.
func (m *benchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// tickCmd redraws every 100ms.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *benchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = max(msg.Width-20, 20)

	case progressUpdateMsg, errorMsg:
		// Already recorded by the tracker.
		return m, nil

	case completeMsg:
		m.mu.Lock()
		m.complete = true
		m.stats = CompletionStats(msg)
		m.mu.Unlock()
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *benchModel) View() string {
	if m.quitting {
		return "Cancelled.\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	contentWidth := max(m.width-4, 40)
	stats := m.tracker.Stats()

	sections := []string{
		m.renderJobs(stats.Jobs),
		m.renderDivider(contentWidth),
		m.renderProgress(stats),
		m.renderSpeedMetrics(stats),
		m.renderDivider(contentWidth),
		m.renderSparkline(contentWidth),
	}

	panel := m.wrapInPanel(m.title, strings.Join(sections, "\n"), contentWidth)
	return panel + "\n" + m.renderStatusBar(stats)
}

// renderJobs renders one stage strip per job.
func (m *benchModel) renderJobs(jobs []JobProgress) string {
	if len(jobs) == 0 {
		return m.styles.Dim.Render("Preparing jobs...")
	}

	stages := []struct {
		stage Stage
		name  string
	}{
		{StageGenerating, "Gen"},
		{StageInserting, "Insert"},
		{StageMoving, "Move"},
		{StageVerifying, "Verify"},
	}

	arrow := m.styles.Dim.Render(" → ")
	lines := make([]string, 0, len(jobs))
	for _, job := range jobs {
		parts := make([]string, 0, len(stages))
		for _, s := range stages {
			var icon string
			var style lipgloss.Style
			switch {
			case s.stage < job.Stage:
				icon, style = "●", m.styles.Success
			case s.stage == job.Stage:
				icon, style = m.spinner.View(), m.styles.Active
			default:
				icon, style = "○", m.styles.Pending
			}
			parts = append(parts, style.Render(icon+" "+s.name))
		}
		label := m.styles.Label.Render(fmt.Sprintf("%-26s", truncateLabel(job.Scenario, 26)))
		lines = append(lines, label+strings.Join(parts, arrow))
	}
	return strings.Join(lines, "\n")
}

// renderProgress renders the overall move progress bar.
func (m *benchModel) renderProgress(stats ProgressStats) string {
	if stats.Total == 0 {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Dim.Render("Loading facts..."))
	}

	bar := m.progressBar.ViewAs(stats.Progress)
	pct := m.styles.Active.Render(fmt.Sprintf("%3.0f%%", stats.Progress*100))
	count := m.styles.Label.Render(fmt.Sprintf("%d / %d moves  •  %d / %d jobs done",
		stats.Current, stats.Total, stats.Done, len(stats.Jobs)))

	return fmt.Sprintf("%s  %s\n%s", bar, pct, count)
}

// renderSpeedMetrics renders move throughput and ETA.
func (m *benchModel) renderSpeedMetrics(stats ProgressStats) string {
	speed := fmt.Sprintf("Speed: %s", FormatRate(stats.Speed.Current))
	if stats.Speed.Avg > 0 {
		speed += fmt.Sprintf(" (avg: %s, peak: %s)", FormatRate(stats.Speed.Avg), FormatRate(stats.Speed.Peak))
	}
	parts := []string{m.styles.Speed.Render(speed)}

	if stats.ETA > 0 {
		parts = append(parts, m.styles.Label.Render("ETA: "+formatDuration(stats.ETA)))
	}

	return strings.Join(parts, m.styles.Dim.Render("  •  "))
}

// renderSparkline renders the throughput sparkline.
func (m *benchModel) renderSparkline(width int) string {
	spark := m.tracker.RenderSparkline(max(width-14, 10))
	return m.styles.Sparkline.Render(spark) + " " + m.styles.Dim.Render("moves/s ─")
}

func (m *benchModel) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}

// wrapInPanel wraps content in a rounded box with a title line above it.
func (m *benchModel) wrapInPanel(title, content string, width int) string {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDarkGray)).
		Padding(0, 1).
		Width(width)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		panel.Render(content),
	)
}

// renderStatusBar renders the warning and error counts.
func (m *benchModel) renderStatusBar(stats ProgressStats) string {
	var parts []string
	if stats.WarnCount > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", stats.WarnCount)))
	}
	if stats.ErrorCount > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", stats.ErrorCount)))
	}

	if len(parts) == 0 {
		return m.styles.Dim.Render("q to quit")
	}

	separator := m.styles.Dim.Render("  │  ")
	return strings.Join(parts, separator) + m.styles.Dim.Render("  │  q to quit")
}

// renderComplete renders the completion summary.
func (m *benchModel) renderComplete() string {
	contentWidth := max(m.width-4, 40)

	lines := []string{m.styles.Success.Render("✓ Bench Complete"), ""}

	jobsLabel := m.styles.Label.Render("Jobs:")
	movesLabel := m.styles.Label.Render("Moves:")
	durationLabel := m.styles.Label.Render("Duration:")
	lines = append(lines,
		fmt.Sprintf("%s     %s", jobsLabel, m.styles.Active.Render(fmt.Sprintf("%d", m.stats.Jobs))),
		fmt.Sprintf("%s    %s", movesLabel, m.styles.Active.Render(fmt.Sprintf("%d", m.stats.Moves))),
		fmt.Sprintf("%s %s", durationLabel, m.styles.Active.Render(formatDuration(m.stats.Duration))),
	)

	if len(m.stats.Results) > 0 {
		var table bytes.Buffer
		writeResultTable(&table, m.stats.Results)
		lines = append(lines, "", strings.TrimRight(table.String(), "\n"))
	}

	if m.stats.Errors > 0 || m.stats.Warnings > 0 {
		lines = append(lines, "")
		if m.stats.Errors > 0 {
			lines = append(lines, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", m.stats.Errors)))
		}
		if m.stats.Warnings > 0 {
			lines = append(lines, m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", m.stats.Warnings)))
		}
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorLime)).
		Padding(1, 2).
		Width(contentWidth)

	return panel.Render(strings.Join(lines, "\n")) + "\n"
}

// summary returns the completion view once Complete was received.
func (m *benchModel) summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.complete {
		return ""
	}
	return m.renderComplete()
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}

// truncateLabel shortens label to maxLen runes, keeping the backend suffix.
func truncateLabel(label string, maxLen int) string {
	runes := []rune(label)
	if len(runes) <= maxLen {
		return label
	}
	if maxLen < 4 {
		return string(runes[:maxLen])
	}
	return "…" + string(runes[len(runes)-maxLen+1:])
}

// Ensure TUIRenderer implements Renderer
var _ Renderer = (*TUIRenderer)(nil)
