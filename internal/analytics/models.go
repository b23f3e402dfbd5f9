package analytics

import (
	"time"

	"github.com/google/uuid"
)

// RouteAnalytics summarizes booking performance for one route
type RouteAnalytics struct {
	RouteID              uuid.UUID `json:"route_id"`
	RouteName            string    `json:"route_name"`
	TripCount            int64     `json:"trip_count"`
	TotalBookings        int64     `json:"total_bookings"`
	ConfirmedBookings    int64     `json:"confirmed_bookings"`
	PendingBookings      int64     `json:"pending_bookings"`
	CancelledBookings    int64     `json:"cancelled_bookings"`
	ExpiredBookings      int64     `json:"expired_bookings"`
	TotalRevenue         float64   `json:"total_revenue"`
	AvgRevenuePerTrip    float64   `json:"avg_revenue_per_trip"`
	AvgRevenuePerBooking float64   `json:"avg_revenue_per_booking"`
	AverageOccupancy     float64   `json:"average_occupancy"`
}

// BookingOverview is the system-wide booking funnel snapshot
type BookingOverview struct {
	TotalBookings        int64   `json:"total_bookings"`
	ConfirmedBookings    int64   `json:"confirmed_bookings"`
	PendingBookings      int64   `json:"pending_bookings"`
	CancelledBookings    int64   `json:"cancelled_bookings"`
	ExpiredBookings      int64   `json:"expired_bookings"`
	BookingsToday        int64   `json:"bookings_today"`
	BookingsThisWeek     int64   `json:"bookings_this_week"`
	BookingsThisMonth    int64   `json:"bookings_this_month"`
	TotalRevenue         float64 `json:"total_revenue"`
	AvgRevenuePerBooking float64 `json:"avg_revenue_per_booking"`
}

// TripAnalytics summarizes a single trip's sales
type TripAnalytics struct {
	TripID        uuid.UUID `json:"trip_id"`
	PlateNumber   string    `json:"plate_number"`
	RouteName     string    `json:"route_name"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Capacity      int       `json:"capacity"`
	SeatsSold     int       `json:"seats_sold"`
	OccupancyRate float64   `json:"occupancy_rate"`
	Revenue       float64   `json:"revenue"`
}

// PeakHour is one bucket of the bookings-by-hour-of-day histogram
type PeakHour struct {
	Hour     int   `json:"hour"`
	Bookings int64 `json:"bookings"`
}

// Aggregate rows scanned straight out of the repository queries. Derived
// figures (rates, averages) are computed in the service so the SQL stays
// plain sums and counts.

type RouteStatsRow struct {
	RouteID       uuid.UUID
	Origin        string
	Destination   string
	TripCount     int64
	SeatsOffered  int64
	TotalBookings int64
	Confirmed     int64
	Pending       int64
	Cancelled     int64
	Expired       int64
	Revenue       float64
	SeatsSold     int64
}

type BookingStatsRow struct {
	TotalBookings   int64
	Confirmed       int64
	Pending         int64
	Cancelled       int64
	Expired         int64
	BookedToday     int64
	BookedThisWeek  int64
	BookedThisMonth int64
	Revenue         float64
}

type TripStatsRow struct {
	TripID        uuid.UUID
	PlateNumber   string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Capacity      int
	SeatsSold     int64
	Revenue       float64
}
