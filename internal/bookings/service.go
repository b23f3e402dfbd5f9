package bookings

import (
	"context"
	"fmt"
	"time"

	"busline/internal/realtime"
	"busline/internal/shared/apperrors"
	"busline/internal/shared/config"
	"busline/internal/trips"
	"busline/internal/users"
	"busline/pkg/cache"
	"busline/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TripReader is the slice of the trip repository the booking core needs
type TripReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*trips.Trip, error)
}

// TicketIssuer issues a ticket for a confirmed booking. Implemented by the
// ticket service; declared here so confirmation can trigger issuance without
// a package cycle.
type TicketIssuer interface {
	IssueTicket(ctx context.Context, bookingID uuid.UUID) error
}

type Service interface {
	GetSeatAvailability(ctx context.Context, tripID uuid.UUID) (*SeatAvailabilityResponse, error)
	CreateBooking(ctx context.Context, principal users.Principal, req CreateBookingRequest) (*BookingResponse, error)
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error)
	CancelBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*BookingResponse, error)
	GetBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*BookingResponse, error)
	ListUserBookings(ctx context.Context, principal users.Principal) ([]BookingResponse, error)

	// SweepExpired is called by the expiry reaper; it returns how many
	// bookings were expired this pass
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo       Repository
	tripRepo   TripReader
	cache      cache.Service
	notifier   realtime.Notifier
	tickets    TicketIssuer
	cfg        config.BookingConfig
	seatMapTTL time.Duration
	log        *logger.Logger
}

func NewService(repo Repository, tripRepo TripReader, cacheService cache.Service, notifier realtime.Notifier, tickets TicketIssuer, cfg config.BookingConfig, seatMapTTL time.Duration) Service {
	return &service{
		repo:       repo,
		tripRepo:   tripRepo,
		cache:      cacheService,
		notifier:   notifier,
		tickets:    tickets,
		cfg:        cfg,
		seatMapTTL: seatMapTTL,
		log:        logger.GetDefault().WithComponent("booking-service"),
	}
}

// GetSeatAvailability returns the seat ledger for a bookable trip: every seat
// number up to the bus capacity, marked free or held. Served from Redis when
// fresh, derived from the claim rows otherwise.
func (s *service) GetSeatAvailability(ctx context.Context, tripID uuid.UUID) (*SeatAvailabilityResponse, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.IsBookable() {
		return nil, apperrors.InvalidStateError{Msg: fmt.Sprintf("trip is %s and not open for booking", trip.Status)}
	}

	cacheKey := cache.SeatMapKey(tripID.String())
	var cached SeatAvailabilityResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	held, err := s.repo.HeldSeatNumbers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load held seats: %w", err)
	}

	seats := make(map[int]bool, trip.Capacity)
	for n := 1; n <= trip.Capacity; n++ {
		seats[n] = true
	}
	for _, n := range held {
		seats[n] = false
	}

	resp := &SeatAvailabilityResponse{
		TripID:         trip.ID,
		Capacity:       trip.Capacity,
		SeatsRemaining: trip.SeatsRemaining,
		Seats:          seats,
	}

	if err := s.cache.Set(ctx, cacheKey, resp, s.seatMapTTL); err != nil {
		s.log.Warn("failed to cache seat availability", "trip_id", tripID, "error", err)
	}

	return resp, nil
}

// CreateBooking places a hold on the requested seats. The whole claim (seat
// rows plus the capacity counter decrement) commits atomically; a lost race
// on the counter is retried with a fresh read up to the configured budget,
// while a lost race on a specific seat is surfaced to the caller immediately.
func (s *service) CreateBooking(ctx context.Context, principal users.Principal, req CreateBookingRequest) (*BookingResponse, error) {
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "invalid trip id"}
	}

	seats, err := normalizeSeats(req.SeatNumbers)
	if err != nil {
		return nil, err
	}

	attempts := s.cfg.CapacityRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		trip, err := s.tripRepo.GetByID(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if !trip.IsBookable() {
			return nil, apperrors.InvalidStateError{Msg: fmt.Sprintf("trip is %s and not open for booking", trip.Status)}
		}
		if trip.HasDeparted(time.Now()) {
			return nil, apperrors.InvalidStateError{Msg: "trip has already departed"}
		}
		for _, n := range seats {
			if n > trip.Capacity {
				return nil, apperrors.ValidationError{Msg: fmt.Sprintf("seat %d does not exist on this bus", n)}
			}
		}

		newRemaining := trip.SeatsRemaining - len(seats)
		if newRemaining < 0 {
			return nil, apperrors.SeatConflictError{Seats: seats}
		}

		// Cheap pre-check so the common contention case gets a precise
		// answer without burning a transaction
		conflicts, err := s.repo.HeldConflicts(ctx, tripID, seats)
		if err != nil {
			return nil, fmt.Errorf("failed to check seat conflicts: %w", err)
		}
		if len(conflicts) > 0 {
			return nil, apperrors.SeatConflictError{Seats: conflicts}
		}

		booking := &Booking{
			UserID:      principal.UserID,
			TripID:      tripID,
			SeatNumbers: toInt64Array(seats),
			TotalAmount: trip.Fare * float64(len(seats)),
			Status:      StatusPending,
			ExpiryAt:    time.Now().Add(s.cfg.HoldDuration),
		}

		err = s.repo.CreateWithClaims(ctx, booking, trip.Revision, newRemaining)
		if err != nil {
			if apperrors.IsCapacityConflict(err) {
				s.log.Debug("capacity counter race, retrying", "trip_id", tripID, "attempt", attempt)
				continue
			}
			return nil, err
		}

		s.invalidateSeatMap(ctx, tripID)
		s.notifier.PublishSeatUpdate(ctx, tripID.String(), seatDelta(seats, false))
		s.notifier.PublishBookingUpdate(ctx, booking.ID.String(), booking.Status.String(),
			"Seats held. Complete payment before the hold expires.")

		return booking.ToResponse(), nil
	}

	return nil, apperrors.ErrCapacityConflict
}

// ConfirmBooking transitions a live hold to CONFIRMED and issues the ticket.
// Called by the payment service after a successful payment; seats stay
// claimed and the capacity counter is untouched.
func (s *service) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != StatusPending {
		return nil, apperrors.InvalidStateError{Msg: fmt.Sprintf("booking is %s and cannot be confirmed", booking.Status)}
	}
	if booking.IsExpiredAt(time.Now()) {
		return nil, apperrors.InvalidStateError{Msg: "booking hold has expired"}
	}

	// The repository only flips PENDING rows, so a booking expired by the
	// sweep between our read and this write stays terminal instead of being
	// resurrected with its seats already released
	if err := s.repo.ConfirmPending(ctx, booking.ID); err != nil {
		return nil, err
	}
	booking.Status = StatusConfirmed

	// Issuance is idempotent (one ticket per booking, enforced by the
	// database), so a transient failure here is logged rather than
	// unwinding an already-paid booking
	if err := s.tickets.IssueTicket(ctx, booking.ID); err != nil {
		s.log.Error("failed to issue ticket for confirmed booking", "booking_id", booking.ID, "error", err)
	}

	s.notifier.PublishBookingUpdate(ctx, booking.ID.String(), booking.Status.String(),
		"Payment received. Your ticket is ready.")

	return booking.ToResponse(), nil
}

// CancelBooking releases a PENDING or CONFIRMED booking before departure.
// Only the owner or an admin may cancel.
func (s *service) CancelBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.ForbiddenError{Msg: "you can only cancel your own bookings"}
	}
	if !booking.Status.CanBeCancelled() {
		return nil, apperrors.InvalidStateError{Msg: fmt.Sprintf("booking is %s and cannot be cancelled", booking.Status)}
	}

	trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}
	if trip.HasDeparted(time.Now()) {
		return nil, apperrors.InvalidStateError{Msg: "trip has already departed"}
	}

	if err := s.release(ctx, booking, StatusCancelled); err != nil {
		return nil, err
	}

	s.notifier.PublishBookingUpdate(ctx, booking.ID.String(), booking.Status.String(),
		"Booking has been cancelled.")

	return booking.ToResponse(), nil
}

func (s *service) GetBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.ForbiddenError{Msg: "you can only view your own bookings"}
	}
	return booking.ToResponse(), nil
}

func (s *service) ListUserBookings(ctx context.Context, principal users.Principal) ([]BookingResponse, error) {
	items, err := s.repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return ToResponseList(items), nil
}

// SweepExpired expires every PENDING booking whose hold deadline has passed.
// Failures on individual bookings are logged and skipped so one bad row never
// stalls the sweep.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.FindExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired bookings: %w", err)
	}

	count := 0
	for i := range expired {
		booking := &expired[i]
		if err := s.expireBooking(ctx, booking); err != nil {
			s.log.Error("failed to expire booking", "booking_id", booking.ID, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func (s *service) expireBooking(ctx context.Context, booking *Booking) error {
	if err := s.release(ctx, booking, StatusExpired); err != nil {
		return err
	}
	s.notifier.PublishBookingUpdate(ctx, booking.ID.String(), booking.Status.String(),
		"Booking hold expired before payment.")
	return nil
}

// release moves a seat-holding booking to a terminal status, returning its
// seats to the pool. The capacity counter increment uses the same
// revision-guarded retry as creation.
func (s *service) release(ctx context.Context, booking *Booking, newStatus Status) error {
	seats := booking.Seats()

	attempts := s.cfg.CapacityRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
		if err != nil {
			return err
		}

		newRemaining := trip.SeatsRemaining + len(seats)
		if newRemaining > trip.Capacity {
			newRemaining = trip.Capacity
		}

		err = s.repo.ReleaseWithClaims(ctx, booking, newStatus, trip.Revision, newRemaining)
		if err != nil {
			if apperrors.IsCapacityConflict(err) {
				s.log.Debug("capacity counter race on release, retrying", "trip_id", booking.TripID, "attempt", attempt)
				continue
			}
			return err
		}

		booking.Status = newStatus
		if newStatus == StatusCancelled {
			now := time.Now()
			booking.CancelledAt = &now
		}

		s.invalidateSeatMap(ctx, booking.TripID)
		s.notifier.PublishSeatUpdate(ctx, booking.TripID.String(), seatDelta(seats, true))

		return nil
	}

	return apperrors.ErrCapacityConflict
}

func (s *service) invalidateSeatMap(ctx context.Context, tripID uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.SeatMapKey(tripID.String())); err != nil {
		s.log.Warn("failed to invalidate seat map cache", "trip_id", tripID, "error", err)
	}
}

// normalizeSeats validates and de-duplicates the requested seat numbers
func normalizeSeats(input []int) ([]int, error) {
	if len(input) == 0 {
		return nil, apperrors.ValidationError{Msg: "at least one seat number is required"}
	}

	seen := make(map[int]bool, len(input))
	seats := make([]int, 0, len(input))
	for _, n := range input {
		if n < 1 {
			return nil, apperrors.ValidationError{Msg: fmt.Sprintf("invalid seat number %d", n)}
		}
		if seen[n] {
			return nil, apperrors.ValidationError{Msg: fmt.Sprintf("duplicate seat number %d", n)}
		}
		seen[n] = true
		seats = append(seats, n)
	}
	return seats, nil
}

func toInt64Array(seats []int) pq.Int64Array {
	out := make(pq.Int64Array, len(seats))
	for i, n := range seats {
		out[i] = int64(n)
	}
	return out
}

func seatDelta(seats []int, available bool) map[int]bool {
	delta := make(map[int]bool, len(seats))
	for _, n := range seats {
		delta[n] = available
	}
	return delta
}
