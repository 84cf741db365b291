// Package output formats the short status lines printed by joinindex commands
// outside of a bench run (config, check verdicts, store maintenance).
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons used by Writer.
const (
	IconSuccess = "✓"
	IconWarning = "⚠"
	IconError   = "✗"
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out     io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
}

// New creates an uncolored Writer.
func New(out io.Writer) *Writer {
	return NewWithColor(out, false)
}

// NewWithColor creates a Writer that colors icons and field labels when
// color is true.
func NewWithColor(out io.Writer, color bool) *Writer {
	w := &Writer{out: out}
	if color {
		w.success = lipgloss.NewStyle().Foreground(lipgloss.Color("154"))
		w.warning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
		w.failure = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		w.label = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	}
	return w
}

// Status prints a message behind an icon. An empty icon indents the message
// to line up under iconned lines.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.success.Render(IconSuccess), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.warning.Render(IconWarning), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.failure.Render(IconError), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Field prints an indented "label: value" line with the label padded to width.
func (w *Writer) Field(label string, width int, value any) {
	padded := fmt.Sprintf("%-*s", width, label+":")
	_, _ = fmt.Fprintf(w.out, "  %s %v\n", w.label.Render(padded), value)
}

// Code prints a block of text indented by two spaces, framed by blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
