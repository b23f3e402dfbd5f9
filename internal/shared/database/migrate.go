package database

import (
	"busline/internal/bookings"
	"busline/internal/fleet"
	"busline/internal/payments"
	"busline/internal/tickets"
	"busline/internal/trips"
	"busline/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Primary keys default to uuid_generate_v4()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&users.User{},
		&fleet.Terminal{},
		&fleet.Route{},
		&fleet.Bus{},
		&trips.Trip{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&payments.Payment{},
		&tickets.Ticket{},
	)
}
