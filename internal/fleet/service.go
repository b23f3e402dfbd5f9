package fleet

import (
	"context"
	"fmt"

	"busline/internal/users"

	"github.com/google/uuid"
)

// Service interface defines the contract for fleet reference data
type Service interface {
	RegisterBus(ctx context.Context, principal users.Principal, req CreateBusRequest) (*Bus, error)
	GetBus(ctx context.Context, id uuid.UUID) (*Bus, error)
	ListOperatorBuses(ctx context.Context, operatorID uuid.UUID) ([]Bus, error)

	CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)

	CreateTerminal(ctx context.Context, req CreateTerminalRequest) (*Terminal, error)
	GetTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error)
	ListTerminals(ctx context.Context) ([]Terminal, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// RegisterBus registers a vehicle under the calling operator
func (s *service) RegisterBus(ctx context.Context, principal users.Principal, req CreateBusRequest) (*Bus, error) {
	bus := &Bus{
		PlateNumber: req.PlateNumber,
		BusType:     req.BusType,
		TotalSeats:  req.TotalSeats,
		OperatorID:  principal.UserID,
		Active:      true,
	}

	if err := s.repo.CreateBus(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to register bus: %w", err)
	}
	return bus, nil
}

func (s *service) GetBus(ctx context.Context, id uuid.UUID) (*Bus, error) {
	return s.repo.GetBusByID(ctx, id)
}

func (s *service) ListOperatorBuses(ctx context.Context, operatorID uuid.UUID) ([]Bus, error) {
	return s.repo.ListBusesByOperator(ctx, operatorID)
}

func (s *service) CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error) {
	route := &Route{
		Origin:      req.Origin,
		Destination: req.Destination,
		DistanceKm:  req.DistanceKm,
		Fare:        req.Fare,
		Active:      true,
	}

	if err := s.repo.CreateRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}
	return route, nil
}

func (s *service) GetRoute(ctx context.Context, id uuid.UUID) (*Route, error) {
	return s.repo.GetRouteByID(ctx, id)
}

func (s *service) ListRoutes(ctx context.Context) ([]Route, error) {
	return s.repo.ListRoutes(ctx)
}

func (s *service) CreateTerminal(ctx context.Context, req CreateTerminalRequest) (*Terminal, error) {
	terminal := &Terminal{
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Active:  true,
	}

	if err := s.repo.CreateTerminal(ctx, terminal); err != nil {
		return nil, fmt.Errorf("failed to create terminal: %w", err)
	}
	return terminal, nil
}

func (s *service) GetTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	return s.repo.GetTerminalByID(ctx, id)
}

func (s *service) ListTerminals(ctx context.Context) ([]Terminal, error) {
	return s.repo.ListTerminals(ctx)
}
