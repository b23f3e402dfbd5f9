package analytics

import (
	"context"
	"fmt"
	"time"

	"busline/pkg/cache"
	"busline/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	GetRouteAnalytics(ctx context.Context) ([]RouteAnalytics, error)
	GetBookingOverview(ctx context.Context) (*BookingOverview, error)
	GetTripAnalytics(ctx context.Context, tripID uuid.UUID) (*TripAnalytics, error)
	GetPeakHours(ctx context.Context) ([]PeakHour, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, ttl time.Duration) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		ttl:   ttl,
		log:   logger.GetDefault().WithComponent("analytics-service"),
	}
}

// GetRouteAnalytics reports the booking funnel, revenue and occupancy for
// every route. The aggregate scans the whole booking history, so results are
// served from Redis for a short window.
func (s *service) GetRouteAnalytics(ctx context.Context) ([]RouteAnalytics, error) {
	cacheKey := cache.RouteAnalyticsKey()
	var cached []RouteAnalytics
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	rows, err := s.repo.RouteStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load route analytics: %w", err)
	}

	results := make([]RouteAnalytics, 0, len(rows))
	for _, row := range rows {
		entry := RouteAnalytics{
			RouteID:           row.RouteID,
			RouteName:         row.Origin + " -> " + row.Destination,
			TripCount:         row.TripCount,
			TotalBookings:     row.TotalBookings,
			ConfirmedBookings: row.Confirmed,
			PendingBookings:   row.Pending,
			CancelledBookings: row.Cancelled,
			ExpiredBookings:   row.Expired,
			TotalRevenue:      row.Revenue,
		}
		if row.TripCount > 0 {
			entry.AvgRevenuePerTrip = row.Revenue / float64(row.TripCount)
		}
		if row.TotalBookings > 0 {
			entry.AvgRevenuePerBooking = row.Revenue / float64(row.TotalBookings)
		}
		if row.SeatsOffered > 0 {
			entry.AverageOccupancy = float64(row.SeatsSold) / float64(row.SeatsOffered)
		}
		results = append(results, entry)
	}

	if err := s.cache.Set(ctx, cacheKey, results, s.ttl); err != nil {
		s.log.Warn("failed to cache route analytics", "error", err)
	}

	return results, nil
}

func (s *service) GetBookingOverview(ctx context.Context) (*BookingOverview, error) {
	cacheKey := cache.BookingAnalyticsKey()
	var cached BookingOverview
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	row, err := s.repo.BookingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking analytics: %w", err)
	}

	overview := &BookingOverview{
		TotalBookings:     row.TotalBookings,
		ConfirmedBookings: row.Confirmed,
		PendingBookings:   row.Pending,
		CancelledBookings: row.Cancelled,
		ExpiredBookings:   row.Expired,
		BookingsToday:     row.BookedToday,
		BookingsThisWeek:  row.BookedThisWeek,
		BookingsThisMonth: row.BookedThisMonth,
		TotalRevenue:      row.Revenue,
	}
	if row.TotalBookings > 0 {
		overview.AvgRevenuePerBooking = row.Revenue / float64(row.TotalBookings)
	}

	if err := s.cache.Set(ctx, cacheKey, overview, s.ttl); err != nil {
		s.log.Warn("failed to cache booking overview", "error", err)
	}

	return overview, nil
}

func (s *service) GetTripAnalytics(ctx context.Context, tripID uuid.UUID) (*TripAnalytics, error) {
	row, err := s.repo.TripStats(ctx, tripID)
	if err != nil {
		return nil, err
	}

	result := &TripAnalytics{
		TripID:        row.TripID,
		PlateNumber:   row.PlateNumber,
		RouteName:     row.Origin + " -> " + row.Destination,
		DepartureTime: row.DepartureTime,
		ArrivalTime:   row.ArrivalTime,
		Capacity:      row.Capacity,
		SeatsSold:     int(row.SeatsSold),
		Revenue:       row.Revenue,
	}
	if row.Capacity > 0 {
		result.OccupancyRate = float64(row.SeatsSold) / float64(row.Capacity)
	}
	return result, nil
}

func (s *service) GetPeakHours(ctx context.Context) ([]PeakHour, error) {
	hours, err := s.repo.PeakHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load peak hours: %w", err)
	}
	return hours, nil
}
