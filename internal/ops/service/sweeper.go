package service

import (
	"context"
	"time"

	"github.com/stayops/stayops-backend/pkg/logger"
)

// SnoozeSweeper periodically releases expired alert snoozes across the
// whole table, so alerts on pages nobody reads still come back to
// Pending on time.
type SnoozeSweeper struct {
	alerts   *AlertService
	interval time.Duration
	pageSize int
	logger   *logger.Logger
	cancel   context.CancelFunc
}

// NewSnoozeSweeper creates a new snooze sweeper
func NewSnoozeSweeper(alerts *AlertService, interval time.Duration, pageSize int, log *logger.Logger) *SnoozeSweeper {
	return &SnoozeSweeper{
		alerts:   alerts,
		interval: interval,
		pageSize: pageSize,
		logger:   log,
	}
}

// Start starts the sweeper in a background goroutine
func (s *SnoozeSweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("snooze sweeper started")

		// Run an initial sweep immediately
		s.runSweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("snooze sweeper stopped")
				return
			case <-ticker.C:
				s.runSweep(ctx)
			}
		}
	}()
}

// Stop stops the sweeper goroutine
func (s *SnoozeSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *SnoozeSweeper) runSweep(ctx context.Context) {
	start := time.Now()

	released, err := s.alerts.ReleaseExpiredSnoozes(ctx, s.pageSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("snooze sweep failed")
		return
	}

	if released > 0 {
		s.logger.Info().
			Int("released", released).
			Dur("duration", time.Since(start)).
			Msg("snooze sweep completed")
	}
}
