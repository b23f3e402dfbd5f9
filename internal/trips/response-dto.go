package trips

import (
	"time"
)

// TripResponse is the public view of a trip
type TripResponse struct {
	ID             string    `json:"id"`
	BusID          string    `json:"bus_id"`
	RouteID        string    `json:"route_id"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Fare           float64   `json:"fare"`
	Capacity       int       `json:"capacity"`
	SeatsRemaining int       `json:"seats_remaining"`
	Status         Status    `json:"status"`
}

// ToResponse converts a Trip to its public view
func (t *Trip) ToResponse() TripResponse {
	return TripResponse{
		ID:             t.ID.String(),
		BusID:          t.BusID.String(),
		RouteID:        t.RouteID.String(),
		DepartureTime:  t.DepartureTime,
		ArrivalTime:    t.ArrivalTime,
		Fare:           t.Fare,
		Capacity:       t.Capacity,
		SeatsRemaining: t.SeatsRemaining,
		Status:         t.Status,
	}
}

// ToResponseList converts a slice of trips
func ToResponseList(items []Trip) []TripResponse {
	out := make([]TripResponse, 0, len(items))
	for i := range items {
		out = append(out, items[i].ToResponse())
	}
	return out
}
