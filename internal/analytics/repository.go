package analytics

import (
	"context"

	"busline/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	RouteStats(ctx context.Context) ([]RouteStatsRow, error)
	BookingStats(ctx context.Context) (*BookingStatsRow, error)
	TripStats(ctx context.Context, tripID uuid.UUID) (*TripStatsRow, error)
	PeakHours(ctx context.Context) ([]PeakHour, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// RouteStats aggregates trips and bookings per route. The two lateral
// subqueries keep trip counts and booking counts independent, so a route
// whose trips carry many bookings does not multiply its offered-seat total.
func (r *repository) RouteStats(ctx context.Context) ([]RouteStatsRow, error) {
	var rows []RouteStatsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.id AS route_id,
		       r.origin,
		       r.destination,
		       t.trip_count,
		       t.seats_offered,
		       b.total_bookings,
		       b.confirmed,
		       b.pending,
		       b.cancelled,
		       b.expired,
		       b.revenue,
		       b.seats_sold
		FROM routes r
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS trip_count,
			       COALESCE(SUM(capacity), 0) AS seats_offered
			FROM trips
			WHERE trips.route_id = r.id
		) t ON true
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS total_bookings,
			       COUNT(*) FILTER (WHERE bk.status = 'CONFIRMED') AS confirmed,
			       COUNT(*) FILTER (WHERE bk.status = 'PENDING') AS pending,
			       COUNT(*) FILTER (WHERE bk.status = 'CANCELLED') AS cancelled,
			       COUNT(*) FILTER (WHERE bk.status = 'EXPIRED') AS expired,
			       COALESCE(SUM(bk.total_amount) FILTER (WHERE bk.status = 'CONFIRMED'), 0) AS revenue,
			       COALESCE(SUM(cardinality(bk.seat_numbers)) FILTER (WHERE bk.status = 'CONFIRMED'), 0) AS seats_sold
			FROM bookings bk
			JOIN trips tr ON tr.id = bk.trip_id
			WHERE tr.route_id = r.id
		) b ON true
		ORDER BY b.revenue DESC, r.origin, r.destination`).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) BookingStats(ctx context.Context) (*BookingStatsRow, error) {
	var row BookingStatsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total_bookings,
		       COUNT(*) FILTER (WHERE status = 'CONFIRMED') AS confirmed,
		       COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		       COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled,
		       COUNT(*) FILTER (WHERE status = 'EXPIRED') AS expired,
		       COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())) AS booked_today,
		       COUNT(*) FILTER (WHERE created_at >= date_trunc('week', now())) AS booked_this_week,
		       COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())) AS booked_this_month,
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'CONFIRMED'), 0) AS revenue
		FROM bookings`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) TripStats(ctx context.Context, tripID uuid.UUID) (*TripStatsRow, error) {
	var row TripStatsRow
	result := r.db.WithContext(ctx).Raw(`
		SELECT t.id AS trip_id,
		       bus.plate_number,
		       r.origin,
		       r.destination,
		       t.departure_time,
		       t.arrival_time,
		       t.capacity,
		       COALESCE(SUM(cardinality(b.seat_numbers)) FILTER (WHERE b.status = 'CONFIRMED'), 0) AS seats_sold,
		       COALESCE(SUM(b.total_amount) FILTER (WHERE b.status = 'CONFIRMED'), 0) AS revenue
		FROM trips t
		JOIN buses bus ON bus.id = t.bus_id
		JOIN routes r ON r.id = t.route_id
		LEFT JOIN bookings b ON b.trip_id = t.id
		WHERE t.id = ?
		GROUP BY t.id, bus.plate_number, r.origin, r.destination,
		         t.departure_time, t.arrival_time, t.capacity`, tripID).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFoundError{Resource: "trip"}
	}
	return &row, nil
}

// PeakHours buckets all bookings by the hour of day they were placed
func (r *repository) PeakHours(ctx context.Context) ([]PeakHour, error) {
	var rows []PeakHour
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXTRACT(HOUR FROM created_at)::int AS hour,
		       COUNT(*) AS bookings
		FROM bookings
		GROUP BY hour
		ORDER BY bookings DESC, hour`).
		Scan(&rows).Error
	return rows, err
}
