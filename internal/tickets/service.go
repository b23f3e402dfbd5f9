package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/internal/bookings"
	"busline/internal/fleet"
	"busline/internal/shared/apperrors"
	"busline/internal/trips"
	"busline/internal/users"
	"busline/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingReader and TripReader are the slices of the neighbouring
// repositories ticket rendering needs
type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
}

type TripReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*trips.Trip, error)
}

type RouteReader interface {
	GetRouteByID(ctx context.Context, id uuid.UUID) (*fleet.Route, error)
}

type Service interface {
	// IssueTicket satisfies the booking service's issuer dependency
	IssueTicket(ctx context.Context, bookingID uuid.UUID) error

	GetTicketForBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*TicketResponse, error)
	DownloadTicketPDF(ctx context.Context, principal users.Principal, bookingID uuid.UUID) ([]byte, string, error)
	ValidateTicket(ctx context.Context, ticketNumber string) (*TicketResponse, error)
}

type service struct {
	repo        Repository
	bookingRepo BookingReader
	tripRepo    TripReader
	routeRepo   RouteReader
	log         *logger.Logger
}

func NewService(repo Repository, bookingRepo BookingReader, tripRepo TripReader, routeRepo RouteReader) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		tripRepo:    tripRepo,
		routeRepo:   routeRepo,
		log:         logger.GetDefault().WithComponent("ticket-service"),
	}
}

// IssueTicket creates the ticket for a booking if it does not already have
// one. Numbers look like BL-20260831-00042: a date stamp plus a
// database-sequence counter, so concurrent issuance cannot collide.
func (s *service) IssueTicket(ctx context.Context, bookingID uuid.UUID) error {
	if _, err := s.repo.GetByBookingID(ctx, bookingID); err == nil {
		return nil
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate ticket number: %w", err)
	}

	now := time.Now()
	ticket := &Ticket{
		BookingID:    bookingID,
		TicketNumber: fmt.Sprintf("BL-%s-%05d", now.Format("20060102"), seq),
		IssuedAt:     now,
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with another confirm attempt; the ticket exists
			return nil
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	s.log.Info("issued ticket", "booking_id", bookingID, "ticket_number", ticket.TicketNumber)
	return nil
}

func (s *service) GetTicketForBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*TicketResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.ForbiddenError{Msg: "you can only view tickets for your own bookings"}
	}

	ticket, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return ticket.ToResponse(), nil
}

// DownloadTicketPDF renders the e-ticket as a PDF with an embedded QR code.
// Returns the document bytes and a suggested file name.
func (s *service) DownloadTicketPDF(ctx context.Context, principal users.Principal, bookingID uuid.UUID) ([]byte, string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, "", apperrors.ForbiddenError{Msg: "you can only download tickets for your own bookings"}
	}

	ticket, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return nil, "", err
	}
	route, err := s.routeRepo.GetRouteByID(ctx, trip.RouteID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := renderTicketPDF(ticket, booking, trip, route)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render ticket: %w", err)
	}

	return pdf, ticket.TicketNumber + ".pdf", nil
}

// ValidateTicket marks a ticket as used at boarding. Only valid on the
// departure day of the trip, and only once per ticket.
func (s *service) ValidateTicket(ctx context.Context, ticketNumber string) (*TicketResponse, error) {
	ticket, err := s.repo.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if ticket.Validated {
		return nil, apperrors.InvalidStateError{Msg: "ticket has already been validated"}
	}

	booking, err := s.bookingRepo.GetByID(ctx, ticket.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookings.StatusConfirmed {
		return nil, apperrors.InvalidStateError{Msg: fmt.Sprintf("booking is %s, ticket is not valid", booking.Status)}
	}

	trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !sameDay(now, trip.DepartureTime) {
		return nil, apperrors.InvalidStateError{Msg: "ticket can only be validated on the day of departure"}
	}

	if err := s.repo.MarkValidated(ctx, ticket.ID, now); err != nil {
		return nil, err
	}
	ticket.Validated = true
	ticket.ValidatedAt = &now

	s.log.Info("validated ticket", "ticket_number", ticket.TicketNumber)
	return ticket.ToResponse(), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
