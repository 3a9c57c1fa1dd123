package core

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionSweeper removes expired import sessions every interval until
// ctx is cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started", "interval", interval, "ttl", s.opts.SessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.SweepSessions()
		}
	}
}

// SweepSessions drops expired import sessions now.
func (s *Service) SweepSessions() int {
	n := s.sessions.sweep(s.now())
	if n > 0 {
		slog.Debug("expired import sessions removed", "count", n, "remaining", s.sessions.len())
	}
	return n
}
