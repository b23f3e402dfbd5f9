package payments_test

import (
	"context"
	"testing"
	"time"

	"busline/internal/bookings"
	"busline/internal/payments"
	"busline/internal/shared/apperrors"
	"busline/internal/users"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Create(ctx context.Context, payment *payments.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*payments.Payment, error) {
	args := m.Called(ctx, bookingID)
	if p := args.Get(0); p != nil {
		return p.(*payments.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBookingReader struct{ mock.Mock }

func (m *mockBookingReader) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*bookings.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockConfirmer struct{ mock.Mock }

func (m *mockConfirmer) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*bookings.BookingResponse, error) {
	args := m.Called(ctx, bookingID)
	if r := args.Get(0); r != nil {
		return r.(*bookings.BookingResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func pendingBooking(userID uuid.UUID, expiry time.Time) *bookings.Booking {
	return &bookings.Booking{
		ID:          uuid.New(),
		UserID:      userID,
		TripID:      uuid.New(),
		SeatNumbers: pq.Int64Array{3, 4},
		TotalAmount: 440,
		Status:      bookings.StatusPending,
		ExpiryAt:    expiry,
	}
}

func TestProcessPayment_ConfirmsBooking(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	confirmer := new(mockConfirmer)
	service := payments.NewService(repo, bookingRepo, confirmer)

	ctx := context.Background()
	userID := uuid.New()
	booking := pendingBooking(userID, time.Now().Add(10*time.Minute))

	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*payments.Payment")).Return(nil)
	confirmer.On("ConfirmBooking", ctx, booking.ID).
		Return(&bookings.BookingResponse{ID: booking.ID, Status: bookings.StatusConfirmed}, nil)

	resp, err := service.ProcessPayment(ctx, users.Principal{UserID: userID, Role: users.RoleUser}, payments.ProcessPaymentRequest{
		BookingID: booking.ID.String(),
		Method:    "CARD",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, payments.PaymentCompleted, resp.Status)
		assert.Equal(t, 440.0, resp.Amount)
		assert.NotEmpty(t, resp.TransactionID)
	}
	confirmer.AssertNumberOfCalls(t, "ConfirmBooking", 1)
}

func TestProcessPayment_ExpiredHoldIsNotBilled(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	confirmer := new(mockConfirmer)
	service := payments.NewService(repo, bookingRepo, confirmer)

	ctx := context.Background()
	userID := uuid.New()
	booking := pendingBooking(userID, time.Now().Add(-time.Minute))

	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.ProcessPayment(ctx, users.Principal{UserID: userID, Role: users.RoleUser}, payments.ProcessPaymentRequest{
		BookingID: booking.ID.String(),
		Method:    "UPI",
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	confirmer.AssertNotCalled(t, "ConfirmBooking", mock.Anything, mock.Anything)
}

func TestProcessPayment_OnlyOwnerCanPay(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	service := payments.NewService(repo, bookingRepo, new(mockConfirmer))

	ctx := context.Background()
	booking := pendingBooking(uuid.New(), time.Now().Add(10*time.Minute))

	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.ProcessPayment(ctx, users.Principal{UserID: uuid.New(), Role: users.RoleUser}, payments.ProcessPaymentRequest{
		BookingID: booking.ID.String(),
		Method:    "CARD",
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestProcessPayment_NonPendingBooking(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	service := payments.NewService(repo, bookingRepo, new(mockConfirmer))

	ctx := context.Background()
	userID := uuid.New()
	booking := pendingBooking(userID, time.Now().Add(10*time.Minute))
	booking.Status = bookings.StatusConfirmed

	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.ProcessPayment(ctx, users.Principal{UserID: userID, Role: users.RoleUser}, payments.ProcessPaymentRequest{
		BookingID: booking.ID.String(),
		Method:    "CARD",
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}
