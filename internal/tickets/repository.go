package tickets

import (
	"context"
	"errors"
	"time"

	"busline/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

type Repository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Ticket, error)
	GetByNumber(ctx context.Context, number string) (*Ticket, error)
	MarkValidated(ctx context.Context, id uuid.UUID, at time.Time) error
	NextSequence(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts the ticket. A duplicate booking id means another confirm
// attempt already issued it; callers treat that as success after re-reading.
func (r *repository) Create(ctx context.Context, ticket *Ticket) error {
	err := r.db.WithContext(ctx).Create(ticket).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return gorm.ErrDuplicatedKey
		}
		return err
	}
	return nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "ticket", Err: err}
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("ticket_number = ?", number).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "ticket", Err: err}
		}
		return nil, err
	}
	return &ticket, nil
}

// MarkValidated flips the validated flag exactly once
func (r *repository) MarkValidated(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ? AND validated = ?", id, false).
		Updates(map[string]interface{}{
			"validated":    true,
			"validated_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.InvalidStateError{Msg: "ticket has already been validated"}
	}
	return nil
}

func (r *repository) NextSequence(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('ticket_number_seq')").Scan(&next).Error
	return next, err
}
