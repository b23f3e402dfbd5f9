package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"busline/internal/bookings"
	"busline/internal/shared/apperrors"
	"busline/internal/users"
	"busline/pkg/logger"

	"github.com/google/uuid"
)

// BookingReader and BookingConfirmer are the slices of the booking package
// payment processing needs
type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
}

type BookingConfirmer interface {
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*bookings.BookingResponse, error)
}

type Service interface {
	ProcessPayment(ctx context.Context, principal users.Principal, req ProcessPaymentRequest) (*PaymentResponse, error)
	GetPaymentForBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*PaymentResponse, error)
}

type service struct {
	repo        Repository
	bookingRepo BookingReader
	confirmer   BookingConfirmer
	log         *logger.Logger
}

func NewService(repo Repository, bookingRepo BookingReader, confirmer BookingConfirmer) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		confirmer:   confirmer,
		log:         logger.GetDefault().WithComponent("payment-service"),
	}
}

// ProcessPayment charges the booking's total through the (simulated) gateway
// and, on success, confirms the booking. The booking is validated before the
// charge so an expired hold never gets billed.
func (s *service) ProcessPayment(ctx context.Context, principal users.Principal, req ProcessPaymentRequest) (*PaymentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperrors.ValidationError{Msg: "invalid booking id"}
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != principal.UserID {
		return nil, apperrors.ForbiddenError{Msg: "you can only pay for your own bookings"}
	}
	if booking.Status != bookings.StatusPending {
		return nil, apperrors.InvalidStateError{Msg: fmt.Sprintf("booking is %s and cannot be paid", booking.Status)}
	}
	if booking.IsExpiredAt(time.Now()) {
		return nil, apperrors.InvalidStateError{Msg: "booking hold has expired, please book again"}
	}

	transactionID, gatewayErr := chargeGateway(booking.TotalAmount, req.Method)
	if transactionID == "" {
		// Declined before the provider assigned a reference
		transactionID = "TXN-" + uuid.NewString()
	}

	payment := &Payment{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		Amount:        booking.TotalAmount,
		Method:        strings.ToUpper(req.Method),
		TransactionID: transactionID,
		Status:        PaymentCompleted,
	}
	if gatewayErr != nil {
		payment.Status = PaymentFailed
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if gatewayErr != nil {
		s.log.Warn("payment declined", "booking_id", booking.ID, "error", gatewayErr)
		return nil, apperrors.InvalidStateError{Msg: "payment was declined", Err: gatewayErr}
	}

	if _, err := s.confirmer.ConfirmBooking(ctx, booking.ID); err != nil {
		return nil, err
	}

	s.log.Info("payment completed", "booking_id", booking.ID, "transaction_id", payment.TransactionID)
	return payment.ToResponse(), nil
}

func (s *service) GetPaymentForBooking(ctx context.Context, principal users.Principal, bookingID uuid.UUID) (*PaymentResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.ForbiddenError{Msg: "you can only view payments for your own bookings"}
	}

	payment, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return payment.ToResponse(), nil
}

// chargeGateway stands in for a real payment provider. It always authorizes
// and returns a provider transaction reference.
func chargeGateway(amount float64, method string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("invalid charge amount %.2f", amount)
	}
	return "TXN-" + uuid.NewString(), nil
}
