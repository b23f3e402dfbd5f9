package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Booking is a customer's claim on specific seat numbers on one trip.
// SeatNumbers is the permanent record of which seats were requested; the
// BookingSeat claim rows are the live, uniqueness-enforced representation of
// the hold and exist only while the booking is PENDING or CONFIRMED.
type Booking struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	TripID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"trip_id"`
	SeatNumbers pq.Int64Array `gorm:"type:integer[];not null" json:"seat_numbers"`
	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	Status      Status        `gorm:"type:varchar(20);default:'PENDING';check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'EXPIRED')" json:"status"`
	ExpiryAt    time.Time     `gorm:"not null" json:"expiry_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// BookingSeat is one held seat on a trip. Rows are inserted in the create
// transaction and deleted in the cancel/expire transaction, so the unique
// index on (trip_id, seat_number) is exactly "no seat is held twice".
type BookingSeat struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	TripID     uuid.UUID `gorm:"type:uuid;not null" json:"trip_id"`
	SeatNumber int       `gorm:"not null" json:"seat_number"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingSeat
func (BookingSeat) TableName() string {
	return "booking_seats"
}

// Seats returns the booking's seat numbers as ints
func (b *Booking) Seats() []int {
	out := make([]int, len(b.SeatNumbers))
	for i, n := range b.SeatNumbers {
		out[i] = int(n)
	}
	return out
}

// IsExpiredAt reports whether the hold deadline has passed. Only meaningful
// while the booking is PENDING.
func (b *Booking) IsExpiredAt(now time.Time) bool {
	return !now.Before(b.ExpiryAt)
}
