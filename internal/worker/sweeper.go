package worker

import (
	"context"
	"log/slog"
	"time"

	"basegraph.app/workspaces/common/logger"
)

type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionSweeper periodically removes expired sessions.
type SessionSweeper struct {
	sessions ExpiredSessionDeleter
	interval time.Duration

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewSessionSweeper(sessions ExpiredSessionDeleter, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions:  sessions,
		interval:  interval,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run blocks until Stop is called or ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "workspaces.worker.sweeper",
	})

	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) SweepOnce(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete expired sessions", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "deleted expired sessions", "count", n)
	}
}

func (s *SessionSweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}
