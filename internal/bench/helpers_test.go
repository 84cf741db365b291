package bench

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/ui"
)

// recordingRenderer keeps every event it receives.
type recordingRenderer struct {
	mu       sync.Mutex
	events   []ui.ProgressEvent
	errors   []ui.ErrorEvent
	complete *ui.CompletionStats
}

func (r *recordingRenderer) Start(context.Context) error { return nil }
func (r *recordingRenderer) Stop() error                 { return nil }

func (r *recordingRenderer) UpdateProgress(e ui.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingRenderer) AddError(e ui.ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, e)
}

func (r *recordingRenderer) Complete(s ui.CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete = &s
}

// stages returns the stages reported for one job, in order.
func (r *recordingRenderer) stages(label string) []ui.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ui.Stage
	for _, e := range r.events {
		if e.Scenario == label && (len(out) == 0 || out[len(out)-1] != e.Stage) {
			out = append(out, e.Stage)
		}
	}
	return out
}

func smallBenchConfig() config.BenchConfig {
	cfg := config.NewConfig().Bench
	cfg.Facts = 120
	cfg.Moves = 400
	cfg.VerifyEvery = 100
	cfg.Rooms = 4
	cfg.Days = 2
	cfg.Slots = 6
	cfg.Skills = 6
	cfg.Parallelism = 4
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
