package trips

import "time"

// ScheduleTripRequest represents a trip scheduling request
type ScheduleTripRequest struct {
	BusID               string    `json:"bus_id" binding:"required,uuid"`
	RouteID             string    `json:"route_id" binding:"required,uuid"`
	DepartureTerminalID string    `json:"departure_terminal_id" binding:"required,uuid"`
	ArrivalTerminalID   string    `json:"arrival_terminal_id" binding:"required,uuid"`
	DepartureTime       time.Time `json:"departure_time" binding:"required,futuretime"`
	ArrivalTime         time.Time `json:"arrival_time" binding:"required"`
}

// SearchTripsQuery represents trip search parameters
type SearchTripsQuery struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	Date        string `form:"date" binding:"required"` // YYYY-MM-DD
}
