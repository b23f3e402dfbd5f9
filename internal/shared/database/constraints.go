package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints the booking core relies on
// for correctness under concurrent access. The unique index on booking_seats
// is the authoritative safety net when two create calls race past the
// advisory seat-conflict check: claim rows exist only while a booking is
// PENDING or CONFIRMED, so uniqueness is naturally scoped to held seats.
func MigrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_held_seat_per_trip
		ON booking_seats (trip_id, seat_number);
	`).Error
	if err != nil {
		return err
	}

	// Index for the expiry reaper's sweep query
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_expiry
		ON bookings (status, expiry_at);
	`).Error
	if err != nil {
		return err
	}

	// Index for the trip lifecycle scheduler's sweep query
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trips_status_departure
		ON trips (status, departure_time);
	`).Error
	if err != nil {
		return err
	}

	// Sequence feeding ticket numbers so concurrent issuance never collides
	err = db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS ticket_number_seq;
	`).Error
	if err != nil {
		return err
	}

	return nil
}
