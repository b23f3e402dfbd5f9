package fleet

import (
	"context"
	"errors"

	"busline/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateBus(ctx context.Context, bus *Bus) error
	GetBusByID(ctx context.Context, id uuid.UUID) (*Bus, error)
	ListBusesByOperator(ctx context.Context, operatorID uuid.UUID) ([]Bus, error)

	CreateRoute(ctx context.Context, route *Route) error
	GetRouteByID(ctx context.Context, id uuid.UUID) (*Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)

	CreateTerminal(ctx context.Context, terminal *Terminal) error
	GetTerminalByID(ctx context.Context, id uuid.UUID) (*Terminal, error)
	ListTerminals(ctx context.Context) ([]Terminal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBus(ctx context.Context, bus *Bus) error {
	return r.db.WithContext(ctx).Create(bus).Error
}

func (r *repository) GetBusByID(ctx context.Context, id uuid.UUID) (*Bus, error) {
	var bus Bus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "bus", Err: err}
		}
		return nil, err
	}
	return &bus, nil
}

func (r *repository) ListBusesByOperator(ctx context.Context, operatorID uuid.UUID) ([]Bus, error) {
	var buses []Bus
	err := r.db.WithContext(ctx).
		Where("operator_id = ?", operatorID).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&buses).Error
	return buses, err
}

func (r *repository) CreateRoute(ctx context.Context, route *Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *repository) GetRouteByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	var route Route
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "route", Err: err}
		}
		return nil, err
	}
	return &route, nil
}

func (r *repository) ListRoutes(ctx context.Context) ([]Route, error) {
	var routes []Route
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("origin, destination").
		Find(&routes).Error
	return routes, err
}

func (r *repository) CreateTerminal(ctx context.Context, terminal *Terminal) error {
	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *repository) GetTerminalByID(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	var terminal Terminal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&terminal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError{Resource: "terminal", Err: err}
		}
		return nil, err
	}
	return &terminal, nil
}

func (r *repository) ListTerminals(ctx context.Context) ([]Terminal, error) {
	var terminals []Terminal
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("city, name").
		Find(&terminals).Error
	return terminals, err
}
