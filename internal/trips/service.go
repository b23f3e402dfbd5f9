package trips

import (
	"context"
	"fmt"
	"time"

	"busline/internal/fleet"
	"busline/internal/shared/apperrors"
	"busline/internal/users"
	"busline/pkg/logger"

	"github.com/google/uuid"
)

// FleetReader is the slice of the fleet repository the trip service needs
// (to avoid a hard dependency on the full reference-data contract)
type FleetReader interface {
	GetBusByID(ctx context.Context, id uuid.UUID) (*fleet.Bus, error)
	GetRouteByID(ctx context.Context, id uuid.UUID) (*fleet.Route, error)
	GetTerminalByID(ctx context.Context, id uuid.UUID) (*fleet.Terminal, error)
}

// Service interface defines the contract for trip scheduling and lifecycle
type Service interface {
	ScheduleTrip(ctx context.Context, principal users.Principal, req ScheduleTripRequest) (*TripResponse, error)
	GetTrip(ctx context.Context, id uuid.UUID) (*TripResponse, error)
	SearchTrips(ctx context.Context, query SearchTripsQuery) ([]TripResponse, error)
	UpcomingTrips(ctx context.Context) ([]TripResponse, error)
	CancelTrip(ctx context.Context, principal users.Principal, id uuid.UUID) (*TripResponse, error)

	// UpdateTripStatuses advances trip status based on wall-clock time.
	// Driven by the background scheduler, returns the number of trips moved.
	UpdateTripStatuses(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo  Repository
	fleet FleetReader
	log   *logger.Logger
}

func NewService(repo Repository, fleetReader FleetReader) Service {
	return &service{
		repo:  repo,
		fleet: fleetReader,
		log:   logger.GetDefault().WithComponent("trips"),
	}
}

// ScheduleTrip creates a new SCHEDULED trip with all seats available
func (s *service) ScheduleTrip(ctx context.Context, principal users.Principal, req ScheduleTripRequest) (*TripResponse, error) {
	busID, err := uuid.Parse(req.BusID)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "invalid bus ID"}
	}
	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "invalid route ID"}
	}
	departureTerminalID, err := uuid.Parse(req.DepartureTerminalID)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "invalid departure terminal ID"}
	}
	arrivalTerminalID, err := uuid.Parse(req.ArrivalTerminalID)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "invalid arrival terminal ID"}
	}

	bus, err := s.fleet.GetBusByID(ctx, busID)
	if err != nil {
		return nil, err
	}

	// Operators may only schedule trips on their own buses
	if principal.Role == users.RoleOperator && bus.OperatorID != principal.UserID {
		return nil, apperrors.ForbiddenError{Msg: "you can only schedule trips for your own buses"}
	}

	route, err := s.fleet.GetRouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.fleet.GetTerminalByID(ctx, departureTerminalID); err != nil {
		return nil, err
	}
	if _, err := s.fleet.GetTerminalByID(ctx, arrivalTerminalID); err != nil {
		return nil, err
	}

	if err := validateTripTimes(req.DepartureTime, req.ArrivalTime); err != nil {
		return nil, err
	}

	if err := s.checkBusAvailability(ctx, busID, req.DepartureTime, req.ArrivalTime); err != nil {
		return nil, err
	}

	trip := &Trip{
		BusID:               busID,
		RouteID:             routeID,
		DepartureTerminalID: departureTerminalID,
		ArrivalTerminalID:   arrivalTerminalID,
		DepartureTime:       req.DepartureTime,
		ArrivalTime:         req.ArrivalTime,
		Fare:                route.Fare,
		Capacity:            bus.TotalSeats,
		SeatsRemaining:      bus.TotalSeats,
		Status:              StatusScheduled,
		Active:              true,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to schedule trip: %w", err)
	}

	resp := trip.ToResponse()
	return &resp, nil
}

// checkBusAvailability rejects trips whose window overlaps another active
// SCHEDULED or IN_PROGRESS trip on the same bus
func (s *service) checkBusAvailability(ctx context.Context, busID uuid.UUID, start, end time.Time) error {
	existing, err := s.repo.ListByBus(ctx, busID)
	if err != nil {
		return fmt.Errorf("failed to check bus schedule: %w", err)
	}

	for i := range existing {
		trip := &existing[i]
		if !trip.Active || (trip.Status != StatusScheduled && trip.Status != StatusInProgress) {
			continue
		}
		if start.Before(trip.ArrivalTime) && end.After(trip.DepartureTime) {
			return apperrors.InvalidStateError{Msg: "bus is already scheduled during this time period"}
		}
	}

	return nil
}

func (s *service) GetTrip(ctx context.Context, id uuid.UUID) (*TripResponse, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := trip.ToResponse()
	return &resp, nil
}

func (s *service) SearchTrips(ctx context.Context, query SearchTripsQuery) ([]TripResponse, error) {
	date, err := time.Parse("2006-01-02", query.Date)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "date must be in YYYY-MM-DD format"}
	}

	dayStart := date
	dayEnd := date.Add(24*time.Hour - time.Second)

	results, err := s.repo.Search(ctx, query.Origin, query.Destination, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}

	return ToResponseList(results), nil
}

func (s *service) UpcomingTrips(ctx context.Context) ([]TripResponse, error) {
	results, err := s.repo.ListUpcoming(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming trips: %w", err)
	}
	return ToResponseList(results), nil
}

// CancelTrip cancels a trip that has not yet departed. Operators may cancel
// trips on their own buses, admins may cancel any trip.
func (s *service) CancelTrip(ctx context.Context, principal users.Principal, id uuid.UUID) (*TripResponse, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if principal.Role == users.RoleOperator {
		bus, err := s.fleet.GetBusByID(ctx, trip.BusID)
		if err != nil {
			return nil, err
		}
		if bus.OperatorID != principal.UserID {
			return nil, apperrors.ForbiddenError{Msg: "you can only cancel trips for your own buses"}
		}
	} else if !principal.IsAdmin() {
		return nil, apperrors.ForbiddenError{Msg: "only operators and admins can cancel trips"}
	}

	if trip.Status.IsTerminal() {
		return nil, apperrors.InvalidStateError{Msg: "trip is already completed or cancelled"}
	}
	if trip.HasDeparted(time.Now()) {
		return nil, apperrors.InvalidStateError{Msg: "cannot cancel a trip that has already departed"}
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel trip: %w", err)
	}

	trip.Status = StatusCancelled
	resp := trip.ToResponse()
	return &resp, nil
}

// UpdateTripStatuses advances SCHEDULED trips past departure to IN_PROGRESS
// (or straight to COMPLETED when arrival has also passed) and IN_PROGRESS
// trips past arrival to COMPLETED. Each trip is handled independently; one
// failure never aborts the sweep.
func (s *service) UpdateTripStatuses(ctx context.Context, now time.Time) (int, error) {
	moved := 0

	departed, err := s.repo.FindDeparted(ctx, StatusScheduled, now)
	if err != nil {
		return 0, fmt.Errorf("failed to query departed trips: %w", err)
	}
	for i := range departed {
		trip := &departed[i]
		next := StatusInProgress
		if !trip.ArrivalTime.After(now) {
			next = StatusCompleted
		}
		if err := s.repo.UpdateStatus(ctx, trip.ID, next); err != nil {
			s.log.Error("failed to advance trip status",
				"trip_id", trip.ID.String(), "to", next.String(), "error", err)
			continue
		}
		moved++
	}

	inProgress, err := s.repo.FindDeparted(ctx, StatusInProgress, now)
	if err != nil {
		return moved, fmt.Errorf("failed to query in-progress trips: %w", err)
	}
	for i := range inProgress {
		trip := &inProgress[i]
		if trip.ArrivalTime.After(now) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, trip.ID, StatusCompleted); err != nil {
			s.log.Error("failed to complete trip",
				"trip_id", trip.ID.String(), "error", err)
			continue
		}
		moved++
	}

	return moved, nil
}

func validateTripTimes(departure, arrival time.Time) error {
	if !departure.Before(arrival) {
		return apperrors.ValidationError{Msg: "departure time must be before arrival time"}
	}
	if departure.Before(time.Now()) {
		return apperrors.ValidationError{Msg: "departure time must be in the future"}
	}
	return nil
}
