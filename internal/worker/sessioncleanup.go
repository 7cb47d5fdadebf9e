package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

// Sweeper removes idle sessions and stale rosters.
type Sweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (sessions int, rosters int, err error)
}

// SessionCleanup periodically expires draw sessions that have been idle
// longer than the configured TTL.
type SessionCleanup struct {
	sweeper  Sweeper
	log      *zap.Logger
	interval time.Duration
	idleTTL  time.Duration
}

// NewSessionCleanup creates the worker. interval is how often it runs,
// idleTTL how long a session may sit unused.
func NewSessionCleanup(sweeper Sweeper, logger *zap.Logger, interval, idleTTL time.Duration) *SessionCleanup {
	return &SessionCleanup{
		sweeper:  sweeper,
		log:      logger,
		interval: interval,
		idleTTL:  idleTTL,
	}
}

// Run blocks until ctx is cancelled. It always returns nil so it can sit in an errgroup.
func (w *SessionCleanup) Run(ctx context.Context) error {
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_ttl", w.idleTTL))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("session cleanup worker stopped")
			return nil
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *SessionCleanup) cleanup(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, sweepTimeout)
	defer cancel()

	sessions, rosters, err := w.sweeper.Sweep(ctx, w.idleTTL)
	if err != nil {
		w.log.Error("failed to sweep idle sessions", zap.Error(err))
		return
	}
	if sessions > 0 || rosters > 0 {
		w.log.Info("expired idle state",
			zap.Int("sessions", sessions),
			zap.Int("rosters", rosters))
	}
}
