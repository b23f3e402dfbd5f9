package bookings

import (
	"context"
	"errors"
	"time"

	"busline/internal/shared/apperrors"
	"busline/internal/trips"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// Seat ledger
	HeldSeatNumbers(ctx context.Context, tripID uuid.UUID) ([]int, error)
	HeldConflicts(ctx context.Context, tripID uuid.UUID, seats []int) ([]int, error)

	// State machine transactions
	CreateWithClaims(ctx context.Context, booking *Booking, expectedRevision int64, newRemaining int) error
	ReleaseWithClaims(ctx context.Context, booking *Booking, newStatus Status, expectedRevision int64, newRemaining int) error
	ConfirmPending(ctx context.Context, id uuid.UUID) error

	// Sweep query for the expiry reaper
	FindExpired(ctx context.Context, now time.Time) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "booking", Err: err}
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var results []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error
	return results, err
}

// HeldSeatNumbers returns every seat currently claimed on the trip. Claim
// rows only exist for PENDING and CONFIRMED bookings, so no status filter is
// needed.
func (r *repository) HeldSeatNumbers(ctx context.Context, tripID uuid.UUID) ([]int, error) {
	var seats []int
	err := r.db.WithContext(ctx).
		Model(&BookingSeat{}).
		Where("trip_id = ?", tripID).
		Pluck("seat_number", &seats).Error
	return seats, err
}

// HeldConflicts returns the subset of the requested seats that are already
// claimed on the trip
func (r *repository) HeldConflicts(ctx context.Context, tripID uuid.UUID, seats []int) ([]int, error) {
	var conflicts []int
	err := r.db.WithContext(ctx).
		Model(&BookingSeat{}).
		Where("trip_id = ? AND seat_number IN ?", tripID, seats).
		Order("seat_number").
		Pluck("seat_number", &conflicts).Error
	return conflicts, err
}

// CreateWithClaims inserts the booking, its seat claim rows, and the
// revision-guarded decrement of the trip's seats-remaining counter in a
// single transaction. Either everything commits or nothing does, so a race
// lost on any seat (unique index) or on the counter (revision mismatch)
// leaves no partial booking behind.
func (r *repository) CreateWithClaims(ctx context.Context, booking *Booking, expectedRevision int64, newRemaining int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		claims := make([]BookingSeat, 0, len(booking.SeatNumbers))
		for _, seat := range booking.SeatNumbers {
			claims = append(claims, BookingSeat{
				BookingID:  booking.ID,
				TripID:     booking.TripID,
				SeatNumber: int(seat),
			})
		}
		if err := tx.Create(&claims).Error; err != nil {
			return err
		}

		return trips.AdjustSeatsRemaining(tx, booking.TripID, expectedRevision, newRemaining)
	})

	if err != nil {
		if isUniqueViolation(err) {
			// Another booking claimed one of these seats between the
			// service's pre-check and our insert. Report which ones.
			conflicts, qerr := r.HeldConflicts(ctx, booking.TripID, booking.Seats())
			if qerr != nil || len(conflicts) == 0 {
				return apperrors.SeatConflictError{Seats: booking.Seats(), Err: err}
			}
			return apperrors.SeatConflictError{Seats: conflicts, Err: err}
		}
		return err
	}
	return nil
}

// ReleaseWithClaims moves the booking to a seat-releasing status, deletes its
// claim rows, and increments the seats-remaining counter, all in one
// transaction
func (r *repository) ReleaseWithClaims(ctx context.Context, booking *Booking, newStatus Status, expectedRevision int64, newRemaining int) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     newStatus,
			"updated_at": now,
		}
		if newStatus == StatusCancelled {
			updates["cancelled_at"] = now
		}

		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", booking.ID, booking.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Someone else transitioned the booking first
			return apperrors.InvalidStateError{Msg: "booking was updated concurrently"}
		}

		if err := tx.Where("booking_id = ?", booking.ID).Delete(&BookingSeat{}).Error; err != nil {
			return err
		}

		return trips.AdjustSeatsRemaining(tx, booking.TripID, expectedRevision, newRemaining)
	})
}

// ConfirmPending moves a booking from PENDING to CONFIRMED. The status
// predicate keeps the transition race-safe against the expiry sweep: if the
// booking was expired (or cancelled) between the caller's read and this
// write, no row matches and the terminal status stands.
func (r *repository) ConfirmPending(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":     StatusConfirmed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.InvalidStateError{Msg: "booking is no longer pending and cannot be confirmed"}
	}
	return nil
}

func (r *repository) FindExpired(ctx context.Context, now time.Time) ([]Booking, error) {
	var results []Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Where("expiry_at <= ?", now).
		Find(&results).Error
	return results, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
