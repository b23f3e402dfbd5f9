package realtime

import (
	"encoding/json"
	"time"
)

// SeatUpdateMessage is the payload broadcast when seat availability changes
// on a trip. Keys of Seats are seat numbers; true means available.
type SeatUpdateMessage struct {
	TripID    string       `json:"trip_id"`
	Seats     map[int]bool `json:"seats"`
	Timestamp time.Time    `json:"timestamp"`
}

// BookingUpdateMessage is the payload broadcast when a booking changes status
type BookingUpdateMessage struct {
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *SeatUpdateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *BookingUpdateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
