package bookings

import (
	"time"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	TripID      uuid.UUID  `json:"trip_id"`
	SeatNumbers []int      `json:"seat_numbers"`
	TotalAmount float64    `json:"total_amount"`
	Status      Status     `json:"status"`
	ExpiryAt    time.Time  `json:"expiry_at"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// SeatAvailabilityResponse is the seat ledger for one trip. Seats maps every
// seat number on the bus to whether it is currently free.
type SeatAvailabilityResponse struct {
	TripID         uuid.UUID    `json:"trip_id"`
	Capacity       int          `json:"capacity"`
	SeatsRemaining int          `json:"seats_remaining"`
	Seats          map[int]bool `json:"seats"`
}

func (b *Booking) ToResponse() *BookingResponse {
	return &BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		TripID:      b.TripID,
		SeatNumbers: b.Seats(),
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
		ExpiryAt:    b.ExpiryAt,
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
	}
}

func ToResponseList(items []Booking) []BookingResponse {
	out := make([]BookingResponse, len(items))
	for i := range items {
		out[i] = *items[i].ToResponse()
	}
	return out
}
