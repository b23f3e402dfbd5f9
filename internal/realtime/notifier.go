package realtime

import (
	"context"
)

// Notifier broadcasts seat-availability and booking-status deltas to
// interested subscribers. Delivery is best-effort, at-most-once: a failed or
// slow subscriber must never delay or fail a booking transition, so
// implementations are required to be non-blocking. Within one trip, seat
// messages are published in the order the underlying transitions committed.
type Notifier interface {
	PublishSeatUpdate(ctx context.Context, tripID string, seats map[int]bool)
	PublishBookingUpdate(ctx context.Context, bookingID string, status string, message string)
	Close() error
}

// NopNotifier discards all updates. Used when Kafka is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) PublishSeatUpdate(ctx context.Context, tripID string, seats map[int]bool) {}

func (NopNotifier) PublishBookingUpdate(ctx context.Context, bookingID string, status string, message string) {
}

func (NopNotifier) Close() error { return nil }
