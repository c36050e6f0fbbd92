package sync

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler drives the engine in strictly sequential cycles with a fixed
// inter-cycle delay. A new cycle never starts before the previous one
// finished, so two passes cannot draft for the same comment concurrently.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
}

func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{engine: engine, interval: interval}
}

// Run executes cycles until ctx is cancelled. The first cycle starts
// immediately; cycle failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	slog.InfoContext(ctx, "sync scheduler started", "interval", s.interval.String())

	for {
		if err := s.engine.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				slog.InfoContext(ctx, "sync scheduler stopped")
				return
			}
			slog.ErrorContext(ctx, "sync cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "sync scheduler stopped")
			return
		case <-time.After(s.interval):
		}
	}
}
