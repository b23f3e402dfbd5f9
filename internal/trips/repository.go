package trips

import (
	"context"
	"errors"
	"time"

	"busline/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	Search(ctx context.Context, origin, destination string, dayStart, dayEnd time.Time) ([]Trip, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]Trip, error)
	ListByBus(ctx context.Context, busID uuid.UUID) ([]Trip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Capacity counter
	AdjustSeatsRemaining(ctx context.Context, tripID uuid.UUID, expectedRevision int64, newRemaining int) error

	// Sweep queries for the lifecycle scheduler
	FindDeparted(ctx context.Context, status Status, now time.Time) ([]Trip, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trip *Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "trip", Err: err}
		}
		return nil, err
	}
	return &trip, nil
}

func (r *repository) Search(ctx context.Context, origin, destination string, dayStart, dayEnd time.Time) ([]Trip, error) {
	var results []Trip
	err := r.db.WithContext(ctx).
		Joins("JOIN routes ON routes.id = trips.route_id").
		Where("routes.origin = ? AND routes.destination = ?", origin, destination).
		Where("trips.departure_time BETWEEN ? AND ?", dayStart, dayEnd).
		Where("trips.active = ?", true).
		Where("trips.status = ?", StatusScheduled).
		Order("trips.departure_time").
		Find(&results).Error
	return results, err
}

func (r *repository) ListUpcoming(ctx context.Context, after time.Time) ([]Trip, error) {
	var results []Trip
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("departure_time > ?", after).
		Where("status IN ?", []Status{StatusScheduled, StatusInProgress}).
		Order("departure_time").
		Find(&results).Error
	return results, err
}

func (r *repository) ListByBus(ctx context.Context, busID uuid.UUID) ([]Trip, error) {
	var results []Trip
	err := r.db.WithContext(ctx).
		Where("bus_id = ?", busID).
		Order("departure_time").
		Find(&results).Error
	return results, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Trip{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Trip{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		}).Error
}

// AdjustSeatsRemaining performs a revision-guarded compare-and-swap of the
// trip's seats-remaining counter
func (r *repository) AdjustSeatsRemaining(ctx context.Context, tripID uuid.UUID, expectedRevision int64, newRemaining int) error {
	return AdjustSeatsRemaining(r.db.WithContext(ctx), tripID, expectedRevision, newRemaining)
}

// AdjustSeatsRemaining is the compare-and-swap primitive behind the trip
// capacity counter. It accepts any *gorm.DB so booking transactions can run
// the adjustment atomically with their own writes. The update succeeds only
// if the stored revision still matches; on success the revision is bumped in
// the same statement. A lost race surfaces as ErrCapacityConflict, which the
// caller is expected to retry with a re-read.
func AdjustSeatsRemaining(db *gorm.DB, tripID uuid.UUID, expectedRevision int64, newRemaining int) error {
	result := db.Model(&Trip{}).
		Where("id = ? AND revision = ?", tripID, expectedRevision).
		Updates(map[string]interface{}{
			"seats_remaining": newRemaining,
			"revision":        gorm.Expr("revision + 1"),
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish a vanished trip from a revision mismatch
		var count int64
		if err := db.Model(&Trip{}).Where("id = ?", tripID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFoundError{Resource: "trip"}
		}
		return apperrors.ErrCapacityConflict
	}

	return nil
}

func (r *repository) FindDeparted(ctx context.Context, status Status, now time.Time) ([]Trip, error) {
	var results []Trip
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Where("departure_time < ?", now).
		Find(&results).Error
	return results, err
}
