package trips

import (
	"context"
	"sync/atomic"
	"time"

	"busline/pkg/logger"
)

// StatusScheduler periodically advances trip status based on wall-clock
// comparison to departure/arrival times. Runs never overlap: if a sweep is
// still in progress when the ticker fires, the tick is skipped.
type StatusScheduler struct {
	service  Service
	interval time.Duration
	running  atomic.Bool
	done     chan struct{}
	log      *logger.Logger
}

// NewStatusScheduler creates a new trip status scheduler
func NewStatusScheduler(service Service, interval time.Duration) *StatusScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatusScheduler{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
		log:      logger.GetDefault().WithComponent("trip-status-scheduler"),
	}
}

// Start starts the background sweep
func (s *StatusScheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("trip status scheduler started", "interval", s.interval.String())

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background sweep
func (s *StatusScheduler) Stop() {
	close(s.done)
	s.log.Info("trip status scheduler stopped")
}

func (s *StatusScheduler) sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous trip status sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	moved, err := s.service.UpdateTripStatuses(ctx, time.Now())
	if err != nil {
		s.log.Error("trip status sweep failed", "error", err)
		return
	}
	if moved > 0 {
		s.log.Info("advanced trip statuses", "count", moved)
	}
}
