package bookings

import (
	"context"
	"sync/atomic"
	"time"

	"busline/pkg/logger"
)

// ExpiryReaper periodically expires PENDING bookings whose hold deadline has
// passed, returning their seats to the pool. Runs never overlap: if a sweep
// is still in progress when the ticker fires, the tick is skipped.
type ExpiryReaper struct {
	service  Service
	interval time.Duration
	running  atomic.Bool
	done     chan struct{}
	log      *logger.Logger
}

// NewExpiryReaper creates a new booking expiry reaper
func NewExpiryReaper(service Service, interval time.Duration) *ExpiryReaper {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &ExpiryReaper{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
		log:      logger.GetDefault().WithComponent("booking-expiry-reaper"),
	}
}

// Start starts the background sweep
func (r *ExpiryReaper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.log.Info("booking expiry reaper started", "interval", r.interval.String())

		for {
			select {
			case <-ticker.C:
				r.sweep(ctx)
			case <-r.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background sweep
func (r *ExpiryReaper) Stop() {
	close(r.done)
	r.log.Info("booking expiry reaper stopped")
}

func (r *ExpiryReaper) sweep(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn("previous expiry sweep still running, skipping tick")
		return
	}
	defer r.running.Store(false)

	expired, err := r.service.SweepExpired(ctx, time.Now())
	if err != nil {
		r.log.Error("booking expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		r.log.Info("expired stale bookings", "count", expired)
	}
}
