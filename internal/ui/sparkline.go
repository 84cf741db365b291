package ui

import "strings"

// SparklineChars are the eight bar heights, lowest first.
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline keeps the most recent throughput samples in a ring and renders
// them as block characters scaled to the largest retained sample.
type Sparkline struct {
	samples []float64
	head    int
	count   int
}

// NewSparkline creates a sparkline retaining capacity samples.
func NewSparkline(capacity int) *Sparkline {
	if capacity <= 0 {
		capacity = 60
	}
	return &Sparkline{samples: make([]float64, capacity)}
}

// Add appends a sample, overwriting the oldest once full.
func (s *Sparkline) Add(value float64) {
	s.samples[s.head] = value
	s.head = (s.head + 1) % len(s.samples)
	s.count++
}

// Count returns the number of samples added since creation or Clear.
func (s *Sparkline) Count() int {
	return s.count
}

// Clear drops every sample.
func (s *Sparkline) Clear() {
	clear(s.samples)
	s.head = 0
	s.count = 0
}

// recent returns up to n retained samples, oldest first.
func (s *Sparkline) recent(n int) []float64 {
	held := min(s.count, len(s.samples))
	n = min(n, held)
	out := make([]float64, 0, n)
	for i := held - n; i < held; i++ {
		idx := (s.head - held + i + len(s.samples)) % len(s.samples)
		out = append(out, s.samples[idx])
	}
	return out
}

// Render draws the newest samples right-aligned in exactly width runes.
// A width of zero or less uses the full capacity.
func (s *Sparkline) Render(width int) string {
	if width <= 0 {
		width = len(s.samples)
	}
	values := s.recent(width)

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	top := len(SparklineChars) - 1
	for _, v := range values {
		level := 0
		if peak > 0 {
			level = min(max(int(v/peak*float64(top)), 0), top)
		}
		sb.WriteRune(SparklineChars[level])
	}
	return sb.String()
}
