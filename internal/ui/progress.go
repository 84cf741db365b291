package ui

import (
	"slices"
	"sync"
	"time"
)

// JobProgress is the last reported state of one bench job.
type JobProgress struct {
	Scenario string
	Stage    Stage
	Message  string
}

// ProgressTracker aggregates progress from concurrently running bench jobs.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu        sync.RWMutex
	jobs      map[string]*JobProgress
	order     []string
	current   int
	total     int
	startTime time.Time
	errors    []ErrorEvent
	warnings  []ErrorEvent

	lastETA time.Duration // previous ETA for exponential smoothing

	lastCurrent   int
	lastSpeedCalc time.Time
	currentSpeed  float64
	avgSpeed      float64
	peakSpeed     float64
	speedSamples  int
	sparkline     *Sparkline
}

// SpeedStats contains move throughput for display.
type SpeedStats struct {
	Current float64 // moves/sec over the last sample window
	Avg     float64
	Peak    float64
}

// ProgressStats contains a snapshot of current progress.
type ProgressStats struct {
	Current    int
	Total      int
	Progress   float64
	ETA        time.Duration
	Jobs       []JobProgress
	Done       int // jobs in StageComplete
	ErrorCount int
	WarnCount  int
	Speed      SpeedStats
}

// speedWindow is the minimum interval between throughput samples.
const speedWindow = 500 * time.Millisecond

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker() *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		jobs:          make(map[string]*JobProgress),
		startTime:     now,
		lastSpeedCalc: now,
		sparkline:     NewSparkline(60),
	}
}

// Update records an event. Jobs are listed in first-seen order; the move
// counter only moves forward because concurrent jobs may report out of order.
func (p *ProgressTracker) Update(event ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Scenario != "" {
		job, ok := p.jobs[event.Scenario]
		if !ok {
			job = &JobProgress{Scenario: event.Scenario}
			p.jobs[event.Scenario] = job
			p.order = append(p.order, event.Scenario)
		}
		job.Stage = event.Stage
		job.Message = event.Message
	}

	if event.Total > 0 {
		p.total = event.Total
	}
	if event.Current > p.current {
		p.current = event.Current
	}

	p.sampleSpeed(time.Now())
}

// sampleSpeed must be called with the lock held.
func (p *ProgressTracker) sampleSpeed(now time.Time) {
	elapsed := now.Sub(p.lastSpeedCalc)
	if elapsed < speedWindow {
		return
	}

	if delta := p.current - p.lastCurrent; delta > 0 {
		speed := float64(delta) / elapsed.Seconds()
		p.currentSpeed = speed

		p.speedSamples++
		if p.speedSamples == 1 {
			p.avgSpeed = speed
		} else {
			p.avgSpeed = 0.2*speed + 0.8*p.avgSpeed
		}
		p.peakSpeed = max(p.peakSpeed, speed)
		p.sparkline.Add(speed)
	}

	p.lastCurrent = p.current
	p.lastSpeedCalc = now
}

// AddError records an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings = append(p.warnings, event)
	} else {
		p.errors = append(p.errors, event)
	}
}

// Progress returns current progress as a fraction in [0, 1].
func (p *ProgressTracker) Progress() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.progress()
}

func (p *ProgressTracker) progress() float64 {
	if p.total == 0 {
		return 0
	}
	return min(float64(p.current)/float64(p.total), 1.0)
}

// Elapsed returns time since tracker creation.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return time.Since(p.startTime)
}

// Stats returns current statistics snapshot.
// Uses write lock because calculateETA updates the smoothing state.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	jobs := make([]JobProgress, 0, len(p.order))
	done := 0
	for _, name := range p.order {
		job := *p.jobs[name]
		if job.Stage == StageComplete {
			done++
		}
		jobs = append(jobs, job)
	}

	return ProgressStats{
		Current:    p.current,
		Total:      p.total,
		Progress:   p.progress(),
		ETA:        p.calculateETA(),
		Jobs:       jobs,
		Done:       done,
		ErrorCount: len(p.errors),
		WarnCount:  len(p.warnings),
		Speed: SpeedStats{
			Current: p.currentSpeed,
			Avg:     p.avgSpeed,
			Peak:    p.peakSpeed,
		},
	}
}

// etaSmoothingFactor is the weight of the newest raw estimate.
const etaSmoothingFactor = 0.3

// calculateETA must be called with the write lock held.
func (p *ProgressTracker) calculateETA() time.Duration {
	progress := p.progress()
	if progress <= 0 || progress >= 1.0 {
		return 0
	}

	elapsed := time.Since(p.startTime)
	remaining := time.Duration(float64(elapsed)/progress) - elapsed
	if remaining < 0 {
		return 0
	}

	if p.lastETA == 0 {
		p.lastETA = remaining
		return remaining
	}

	smoothed := time.Duration(etaSmoothingFactor*float64(remaining) + (1-etaSmoothingFactor)*float64(p.lastETA))
	p.lastETA = smoothed
	return smoothed
}

// Errors returns the recorded errors.
func (p *ProgressTracker) Errors() []ErrorEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.errors)
}

// Warnings returns the recorded warnings.
func (p *ProgressTracker) Warnings() []ErrorEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.warnings)
}

// RenderSparkline returns the throughput sparkline, at most width runes wide.
func (p *ProgressTracker) RenderSparkline(width int) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.sparkline.Render(width)
}

// SpeedStats returns current throughput statistics.
func (p *ProgressTracker) SpeedStats() SpeedStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return SpeedStats{
		Current: p.currentSpeed,
		Avg:     p.avgSpeed,
		Peak:    p.peakSpeed,
	}
}
