package tickets_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"busline/internal/bookings"
	"busline/internal/fleet"
	"busline/internal/shared/apperrors"
	"busline/internal/tickets"
	"busline/internal/trips"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Create(ctx context.Context, ticket *tickets.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *mockRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*tickets.Ticket, error) {
	args := m.Called(ctx, bookingID)
	if t := args.Get(0); t != nil {
		return t.(*tickets.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*tickets.Ticket, error) {
	args := m.Called(ctx, number)
	if t := args.Get(0); t != nil {
		return t.(*tickets.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) MarkValidated(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockRepository) NextSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookingReader struct{ mock.Mock }

func (m *mockBookingReader) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*bookings.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTripReader struct{ mock.Mock }

func (m *mockTripReader) GetByID(ctx context.Context, id uuid.UUID) (*trips.Trip, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*trips.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRouteReader struct{ mock.Mock }

func (m *mockRouteReader) GetRouteByID(ctx context.Context, id uuid.UUID) (*fleet.Route, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*fleet.Route), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(repo *mockRepository, bookingRepo *mockBookingReader, tripRepo *mockTripReader, routeRepo *mockRouteReader) tickets.Service {
	return tickets.NewService(repo, bookingRepo, tripRepo, routeRepo)
}

func TestIssueTicket_AssignsDatedSequentialNumber(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockBookingReader), new(mockTripReader), new(mockRouteReader))

	ctx := context.Background()
	bookingID := uuid.New()

	repo.On("GetByBookingID", ctx, bookingID).Return(nil, apperrors.NotFoundError{Resource: "ticket"})
	repo.On("NextSequence", ctx).Return(int64(42), nil)

	var created *tickets.Ticket
	repo.On("Create", ctx, mock.AnythingOfType("*tickets.Ticket")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*tickets.Ticket) }).
		Return(nil)

	err := service.IssueTicket(ctx, bookingID)

	assert.NoError(t, err)
	if assert.NotNil(t, created) {
		expected := fmt.Sprintf("BL-%s-00042", time.Now().Format("20060102"))
		assert.Equal(t, expected, created.TicketNumber)
		assert.Equal(t, bookingID, created.BookingID)
	}
}

func TestIssueTicket_AlreadyIssuedIsANoop(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockBookingReader), new(mockTripReader), new(mockRouteReader))

	ctx := context.Background()
	bookingID := uuid.New()

	repo.On("GetByBookingID", ctx, bookingID).Return(&tickets.Ticket{BookingID: bookingID}, nil)

	err := service.IssueTicket(ctx, bookingID)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "NextSequence", mock.Anything)
}

func TestIssueTicket_LostInsertRaceIsANoop(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockBookingReader), new(mockTripReader), new(mockRouteReader))

	ctx := context.Background()
	bookingID := uuid.New()

	repo.On("GetByBookingID", ctx, bookingID).Return(nil, apperrors.NotFoundError{Resource: "ticket"})
	repo.On("NextSequence", ctx).Return(int64(7), nil)
	repo.On("Create", ctx, mock.AnythingOfType("*tickets.Ticket")).Return(gorm.ErrDuplicatedKey)

	err := service.IssueTicket(ctx, bookingID)

	assert.NoError(t, err)
}

func confirmedBooking(tripID uuid.UUID) *bookings.Booking {
	return &bookings.Booking{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		TripID:      tripID,
		SeatNumbers: pq.Int64Array{12},
		Status:      bookings.StatusConfirmed,
	}
}

func TestValidateTicket_Success(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, bookingRepo, tripRepo, new(mockRouteReader))

	ctx := context.Background()
	trip := &trips.Trip{ID: uuid.New(), DepartureTime: time.Now()}
	booking := confirmedBooking(trip.ID)
	ticket := &tickets.Ticket{ID: uuid.New(), BookingID: booking.ID, TicketNumber: "BL-20260831-00007"}

	repo.On("GetByNumber", ctx, ticket.TicketNumber).Return(ticket, nil)
	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)
	repo.On("MarkValidated", ctx, ticket.ID, mock.AnythingOfType("time.Time")).Return(nil)

	resp, err := service.ValidateTicket(ctx, ticket.TicketNumber)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.True(t, resp.Validated)
		assert.NotNil(t, resp.ValidatedAt)
	}
}

func TestValidateTicket_OnlyOnDepartureDay(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, bookingRepo, tripRepo, new(mockRouteReader))

	ctx := context.Background()
	trip := &trips.Trip{ID: uuid.New(), DepartureTime: time.Now().Add(72 * time.Hour)}
	booking := confirmedBooking(trip.ID)
	ticket := &tickets.Ticket{ID: uuid.New(), BookingID: booking.ID, TicketNumber: "BL-20260903-00001"}

	repo.On("GetByNumber", ctx, ticket.TicketNumber).Return(ticket, nil)
	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)

	resp, err := service.ValidateTicket(ctx, ticket.TicketNumber)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
	repo.AssertNotCalled(t, "MarkValidated", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateTicket_RejectsSecondValidation(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockBookingReader), new(mockTripReader), new(mockRouteReader))

	ctx := context.Background()
	ticket := &tickets.Ticket{ID: uuid.New(), TicketNumber: "BL-20260831-00009", Validated: true}

	repo.On("GetByNumber", ctx, ticket.TicketNumber).Return(ticket, nil)

	resp, err := service.ValidateTicket(ctx, ticket.TicketNumber)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestValidateTicket_CancelledBookingIsNotValid(t *testing.T) {
	repo := new(mockRepository)
	bookingRepo := new(mockBookingReader)
	service := newTestService(repo, bookingRepo, new(mockTripReader), new(mockRouteReader))

	ctx := context.Background()
	booking := confirmedBooking(uuid.New())
	booking.Status = bookings.StatusCancelled
	ticket := &tickets.Ticket{ID: uuid.New(), BookingID: booking.ID, TicketNumber: "BL-20260831-00011"}

	repo.On("GetByNumber", ctx, ticket.TicketNumber).Return(ticket, nil)
	bookingRepo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.ValidateTicket(ctx, ticket.TicketNumber)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}
