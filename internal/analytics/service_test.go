package analytics_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"busline/internal/analytics"
	"busline/internal/shared/apperrors"
	"busline/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) RouteStats(ctx context.Context) ([]analytics.RouteStatsRow, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]analytics.RouteStatsRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) BookingStats(ctx context.Context) (*analytics.BookingStatsRow, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*analytics.BookingStatsRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) TripStats(ctx context.Context, tripID uuid.UUID) (*analytics.TripStatsRow, error) {
	args := m.Called(ctx, tripID)
	if r := args.Get(0); r != nil {
		return r.(*analytics.TripStatsRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) PeakHours(ctx context.Context) ([]analytics.PeakHour, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]analytics.PeakHour), args.Error(1)
	}
	return nil, args.Error(1)
}

// memoryCache is a map-backed stand-in for the Redis JSON cache
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

func newTestService(repo *mockRepository) analytics.Service {
	return analytics.NewService(repo, newMemoryCache(), 5*time.Minute)
}

func TestGetRouteAnalytics_DerivesRatesFromAggregates(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo)

	ctx := context.Background()
	busy := analytics.RouteStatsRow{
		RouteID:       uuid.New(),
		Origin:        "Accra",
		Destination:   "Kumasi",
		TripCount:     4,
		SeatsOffered:  160,
		TotalBookings: 20,
		Confirmed:     10,
		Pending:       2,
		Cancelled:     5,
		Expired:       3,
		Revenue:       1000,
		SeatsSold:     20,
	}
	quiet := analytics.RouteStatsRow{
		RouteID:     uuid.New(),
		Origin:      "Accra",
		Destination: "Takoradi",
	}

	repo.On("RouteStats", ctx).Return([]analytics.RouteStatsRow{busy, quiet}, nil)

	results, err := service.GetRouteAnalytics(ctx)

	assert.NoError(t, err)
	if assert.Len(t, results, 2) {
		assert.Equal(t, "Accra -> Kumasi", results[0].RouteName)
		assert.Equal(t, int64(10), results[0].ConfirmedBookings)
		assert.Equal(t, 250.0, results[0].AvgRevenuePerTrip)
		assert.Equal(t, 50.0, results[0].AvgRevenuePerBooking)
		assert.InDelta(t, 0.125, results[0].AverageOccupancy, 1e-9)

		// A route with no trips or bookings must not divide by zero
		assert.Equal(t, 0.0, results[1].AvgRevenuePerTrip)
		assert.Equal(t, 0.0, results[1].AvgRevenuePerBooking)
		assert.Equal(t, 0.0, results[1].AverageOccupancy)
	}
}

func TestGetRouteAnalytics_SecondReadServedFromCache(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo)

	ctx := context.Background()
	repo.On("RouteStats", ctx).Return([]analytics.RouteStatsRow{{
		RouteID:     uuid.New(),
		Origin:      "Accra",
		Destination: "Kumasi",
		TripCount:   1,
	}}, nil).Once()

	first, err := service.GetRouteAnalytics(ctx)
	assert.NoError(t, err)

	second, err := service.GetRouteAnalytics(ctx)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "RouteStats", 1)
}

func TestGetBookingOverview(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo)

	ctx := context.Background()
	repo.On("BookingStats", ctx).Return(&analytics.BookingStatsRow{
		TotalBookings:   20,
		Confirmed:       12,
		Pending:         3,
		Cancelled:       4,
		Expired:         1,
		BookedToday:     2,
		BookedThisWeek:  9,
		BookedThisMonth: 20,
		Revenue:         1000,
	}, nil)

	overview, err := service.GetBookingOverview(ctx)

	assert.NoError(t, err)
	if assert.NotNil(t, overview) {
		assert.Equal(t, int64(20), overview.TotalBookings)
		assert.Equal(t, int64(12), overview.ConfirmedBookings)
		assert.Equal(t, int64(9), overview.BookingsThisWeek)
		assert.Equal(t, 1000.0, overview.TotalRevenue)
		assert.Equal(t, 50.0, overview.AvgRevenuePerBooking)
	}
}

func TestGetTripAnalytics_OccupancyRate(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo)

	ctx := context.Background()
	tripID := uuid.New()
	departure := time.Now().Add(24 * time.Hour)

	repo.On("TripStats", ctx, tripID).Return(&analytics.TripStatsRow{
		TripID:        tripID,
		PlateNumber:   "GR-1234-24",
		Origin:        "Accra",
		Destination:   "Kumasi",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(5 * time.Hour),
		Capacity:      44,
		SeatsSold:     33,
		Revenue:       3960,
	}, nil)

	result, err := service.GetTripAnalytics(ctx, tripID)

	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, "Accra -> Kumasi", result.RouteName)
		assert.Equal(t, 33, result.SeatsSold)
		assert.InDelta(t, 0.75, result.OccupancyRate, 1e-9)
	}
}

func TestGetTripAnalytics_UnknownTrip(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo)

	ctx := context.Background()
	tripID := uuid.New()

	repo.On("TripStats", ctx, tripID).Return(nil, apperrors.NotFoundError{Resource: "trip"})

	result, err := service.GetTripAnalytics(ctx, tripID)

	assert.Nil(t, result)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetPeakHours(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo)

	ctx := context.Background()
	repo.On("PeakHours", ctx).Return([]analytics.PeakHour{
		{Hour: 18, Bookings: 40},
		{Hour: 8, Bookings: 25},
	}, nil)

	hours, err := service.GetPeakHours(ctx)

	assert.NoError(t, err)
	if assert.Len(t, hours, 2) {
		assert.Equal(t, 18, hours[0].Hour)
		assert.Equal(t, int64(40), hours[0].Bookings)
	}
}
