package trips

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a scheduled run of a bus over a route between two terminals.
// SeatsRemaining is mutated only through the revision-guarded adjustment in
// this package; Revision detects concurrent modification.
type Trip struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BusID               uuid.UUID `gorm:"type:uuid;index;not null" json:"bus_id"`
	RouteID             uuid.UUID `gorm:"type:uuid;index;not null" json:"route_id"`
	DepartureTerminalID uuid.UUID `gorm:"type:uuid;not null" json:"departure_terminal_id"`
	ArrivalTerminalID   uuid.UUID `gorm:"type:uuid;not null" json:"arrival_terminal_id"`
	DepartureTime       time.Time `gorm:"not null;index" json:"departure_time"`
	ArrivalTime         time.Time `gorm:"not null" json:"arrival_time"`
	Fare                float64   `gorm:"not null;check:fare >= 0" json:"fare"`
	Capacity            int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	SeatsRemaining      int       `gorm:"not null;check:seats_remaining >= 0" json:"seats_remaining"`
	Revision            int64     `gorm:"not null;default:0" json:"-"`
	Status              Status    `gorm:"type:varchar(20);default:'SCHEDULED';check:status IN ('SCHEDULED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')" json:"status"`
	Active              bool      `gorm:"default:true" json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName sets the table name for Trip
func (Trip) TableName() string {
	return "trips"
}

// IsBookable reports whether new bookings may be created against the trip
func (t *Trip) IsBookable() bool {
	return t.Active && t.Status == StatusScheduled
}

// HasDeparted reports whether the trip's departure time has passed
func (t *Trip) HasDeparted(now time.Time) bool {
	return t.DepartureTime.Before(now)
}
