package server

import (
	"context"
	"log/slog"
	"time"
)

// Runner ticks a session at a fixed interval until its context is cancelled.
// Ticks are no-ops while the engine is paused.
type Runner struct {
	session  *Session
	interval time.Duration
	logger   *slog.Logger
}

func NewRunner(session *Session, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Runner{
		session:  session,
		interval: interval,
		logger:   logger.With("component", "runner"),
	}
}

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("runner started", "interval", r.interval.String())
	for {
		select {
		case <-ticker.C:
			r.session.Tick()
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return
		}
	}
}
