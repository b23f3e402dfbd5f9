package bookings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"busline/internal/bookings"
	"busline/internal/shared/apperrors"
	"busline/internal/shared/config"
	"busline/internal/trips"
	"busline/internal/users"
	"busline/pkg/cache"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*bookings.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]bookings.Booking, error) {
	args := m.Called(ctx, userID)
	if b := args.Get(0); b != nil {
		return b.([]bookings.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) HeldSeatNumbers(ctx context.Context, tripID uuid.UUID) ([]int, error) {
	args := m.Called(ctx, tripID)
	if s := args.Get(0); s != nil {
		return s.([]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) HeldConflicts(ctx context.Context, tripID uuid.UUID, seats []int) ([]int, error) {
	args := m.Called(ctx, tripID, seats)
	if s := args.Get(0); s != nil {
		return s.([]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) CreateWithClaims(ctx context.Context, booking *bookings.Booking, expectedRevision int64, newRemaining int) error {
	args := m.Called(ctx, booking, expectedRevision, newRemaining)
	return args.Error(0)
}

func (m *mockRepository) ReleaseWithClaims(ctx context.Context, booking *bookings.Booking, newStatus bookings.Status, expectedRevision int64, newRemaining int) error {
	args := m.Called(ctx, booking, newStatus, expectedRevision, newRemaining)
	return args.Error(0)
}

func (m *mockRepository) ConfirmPending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) FindExpired(ctx context.Context, now time.Time) ([]bookings.Booking, error) {
	args := m.Called(ctx, now)
	if b := args.Get(0); b != nil {
		return b.([]bookings.Booking), args.Error(1)
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

type mockTicketIssuer struct{ mock.Mock }

func (m *mockTicketIssuer) IssueTicket(ctx context.Context, bookingID uuid.UUID) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

// fakeNotifier records published updates for assertions
type fakeNotifier struct {
	seatUpdates    []map[int]bool
	bookingUpdates []string
}

func (f *fakeNotifier) PublishSeatUpdate(ctx context.Context, tripID string, seats map[int]bool) {
	f.seatUpdates = append(f.seatUpdates, seats)
}

func (f *fakeNotifier) PublishBookingUpdate(ctx context.Context, bookingID string, status string, message string) {
	f.bookingUpdates = append(f.bookingUpdates, status)
}

func (f *fakeNotifier) Close() error { return nil }

// stubCache always misses, forcing the service down the repository path
type stubCache struct{}

func (stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (stubCache) Delete(ctx context.Context, key string) error { return nil }
func (stubCache) Ping(ctx context.Context) error               { return nil }

func testConfig() config.BookingConfig {
	return config.BookingConfig{
		HoldDuration:          15 * time.Minute,
		ExpirySweepInterval:   time.Minute,
		TripStatusInterval:    5 * time.Minute,
		CapacityRetryAttempts: 3,
	}
}

func newTestService(repo *mockRepository, tripRepo *mockTripReader, tickets *mockTicketIssuer, notifier *fakeNotifier) bookings.Service {
	return bookings.NewService(repo, tripRepo, stubCache{}, notifier, tickets, testConfig(), 30*time.Second)
}

func bookableTrip(remaining int, revision int64) *trips.Trip {
	return &trips.Trip{
		ID:             uuid.New(),
		DepartureTime:  time.Now().Add(6 * time.Hour),
		ArrivalTime:    time.Now().Add(10 * time.Hour),
		Fare:           250,
		Capacity:       40,
		SeatsRemaining: remaining,
		Revision:       revision,
		Status:         trips.StatusScheduled,
		Active:         true,
	}
}

func TestCreateBooking_Success(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	tickets := new(mockTicketIssuer)
	notifier := &fakeNotifier{}
	service := newTestService(repo, tripRepo, tickets, notifier)

	ctx := context.Background()
	trip := bookableTrip(40, 2)
	principal := users.Principal{UserID: uuid.New(), Role: users.RoleUser}

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)
	repo.On("HeldConflicts", ctx, trip.ID, []int{7, 8}).Return([]int{}, nil)
	repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*bookings.Booking"), int64(2), 38).Return(nil)

	resp, err := service.CreateBooking(ctx, principal, bookings.CreateBookingRequest{
		TripID:      trip.ID.String(),
		SeatNumbers: []int{7, 8},
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, bookings.StatusPending, resp.Status)
		assert.Equal(t, 500.0, resp.TotalAmount)
		assert.Equal(t, []int{7, 8}, resp.SeatNumbers)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), resp.ExpiryAt, 5*time.Second)
	}

	// Seats must be broadcast as taken
	if assert.Len(t, notifier.seatUpdates, 1) {
		assert.Equal(t, map[int]bool{7: false, 8: false}, notifier.seatUpdates[0])
	}
	repo.AssertExpectations(t)
}

func TestCreateBooking_SeatAlreadyHeld(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(38, 5)

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)
	repo.On("HeldConflicts", ctx, trip.ID, []int{5, 6}).Return([]int{5}, nil)

	resp, err := service.CreateBooking(ctx, users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      trip.ID.String(),
		SeatNumbers: []int{5, 6},
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsSeatConflict(err))

	var conflict apperrors.SeatConflictError
	if assert.ErrorAs(t, err, &conflict) {
		assert.Equal(t, []int{5}, conflict.Seats)
	}
	repo.AssertNotCalled(t, "CreateWithClaims", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_RetriesOnCapacityRace(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	notifier := &fakeNotifier{}
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), notifier)

	ctx := context.Background()
	first := bookableTrip(10, 3)
	second := bookableTrip(9, 4)
	second.ID = first.ID

	tripRepo.On("GetByID", ctx, first.ID).Return(first, nil).Once()
	tripRepo.On("GetByID", ctx, first.ID).Return(second, nil).Once()
	repo.On("HeldConflicts", ctx, first.ID, []int{3}).Return([]int{}, nil)
	repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*bookings.Booking"), int64(3), 9).
		Return(apperrors.ErrCapacityConflict).Once()
	repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*bookings.Booking"), int64(4), 8).
		Return(nil).Once()

	resp, err := service.CreateBooking(ctx, users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      first.ID.String(),
		SeatNumbers: []int{3},
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	repo.AssertExpectations(t)
	tripRepo.AssertExpectations(t)
}

func TestCreateBooking_CapacityRetryBudgetExhausted(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(10, 1)

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)
	repo.On("HeldConflicts", ctx, trip.ID, []int{1}).Return([]int{}, nil)
	repo.On("CreateWithClaims", ctx, mock.AnythingOfType("*bookings.Booking"), int64(1), 9).
		Return(apperrors.ErrCapacityConflict)

	resp, err := service.CreateBooking(ctx, users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      trip.ID.String(),
		SeatNumbers: []int{1},
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsCapacityConflict(err))
	repo.AssertNumberOfCalls(t, "CreateWithClaims", 3)
}

func TestCreateBooking_DuplicateSeatNumbers(t *testing.T) {
	service := newTestService(new(mockRepository), new(mockTripReader), new(mockTicketIssuer), &fakeNotifier{})

	resp, err := service.CreateBooking(context.Background(), users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      uuid.NewString(),
		SeatNumbers: []int{4, 4},
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBooking_SeatBeyondCapacity(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(40, 1)

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)

	resp, err := service.CreateBooking(ctx, users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      trip.ID.String(),
		SeatNumbers: []int{41},
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBooking_TripNotBookable(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(40, 1)
	trip.Status = trips.StatusCancelled

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)

	resp, err := service.CreateBooking(ctx, users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      trip.ID.String(),
		SeatNumbers: []int{2},
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestCreateBooking_DepartedTrip(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(40, 1)
	trip.DepartureTime = time.Now().Add(-time.Hour)

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)

	resp, err := service.CreateBooking(ctx, users.Principal{UserID: uuid.New()}, bookings.CreateBookingRequest{
		TripID:      trip.ID.String(),
		SeatNumbers: []int{2},
	})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}

func heldBooking(status bookings.Status, expiry time.Time) *bookings.Booking {
	return &bookings.Booking{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		TripID:      uuid.New(),
		SeatNumbers: pq.Int64Array{1, 2},
		TotalAmount: 500,
		Status:      status,
		ExpiryAt:    expiry,
	}
}

func TestConfirmBooking_Success(t *testing.T) {
	repo := new(mockRepository)
	tickets := new(mockTicketIssuer)
	notifier := &fakeNotifier{}
	service := newTestService(repo, new(mockTripReader), tickets, notifier)

	ctx := context.Background()
	booking := heldBooking(bookings.StatusPending, time.Now().Add(10*time.Minute))

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("ConfirmPending", ctx, booking.ID).Return(nil)
	tickets.On("IssueTicket", ctx, booking.ID).Return(nil)

	resp, err := service.ConfirmBooking(ctx, booking.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, bookings.StatusConfirmed, resp.Status)
	}
	tickets.AssertNumberOfCalls(t, "IssueTicket", 1)
	assert.Contains(t, notifier.bookingUpdates, "CONFIRMED")
}

func TestConfirmBooking_ExpiredHold(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockTripReader), new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	booking := heldBooking(bookings.StatusPending, time.Now().Add(-time.Minute))

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.ConfirmBooking(ctx, booking.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
	repo.AssertNotCalled(t, "ConfirmPending", mock.Anything, mock.Anything)
}

func TestConfirmBooking_AlreadyConfirmed(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockTripReader), new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	booking := heldBooking(bookings.StatusConfirmed, time.Now().Add(10*time.Minute))

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.ConfirmBooking(ctx, booking.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestConfirmBooking_LosesRaceAgainstExpirySweep(t *testing.T) {
	repo := new(mockRepository)
	tickets := new(mockTicketIssuer)
	notifier := &fakeNotifier{}
	service := newTestService(repo, new(mockTripReader), tickets, notifier)

	ctx := context.Background()
	// The hold deadline falls inside the confirm window: the read sees a
	// live PENDING booking, then the sweep expires it before the write
	booking := heldBooking(bookings.StatusPending, time.Now().Add(time.Second))

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	repo.On("ConfirmPending", ctx, booking.ID).
		Return(apperrors.InvalidStateError{Msg: "booking is no longer pending and cannot be confirmed"})

	resp, err := service.ConfirmBooking(ctx, booking.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))

	// The expired booking must not get a ticket or a CONFIRMED broadcast
	tickets.AssertNotCalled(t, "IssueTicket", mock.Anything, mock.Anything)
	assert.Empty(t, notifier.bookingUpdates)
}

func TestCancelBooking_ForbiddenForOtherUser(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockTripReader), new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	booking := heldBooking(bookings.StatusPending, time.Now().Add(10*time.Minute))

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.CancelBooking(ctx, users.Principal{UserID: uuid.New(), Role: users.RoleUser}, booking.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCancelBooking_AdminCanCancelAnyBooking(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	notifier := &fakeNotifier{}
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), notifier)

	ctx := context.Background()
	booking := heldBooking(bookings.StatusConfirmed, time.Now().Add(10*time.Minute))
	trip := bookableTrip(35, 7)
	trip.ID = booking.TripID

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	tripRepo.On("GetByID", ctx, booking.TripID).Return(trip, nil)
	repo.On("ReleaseWithClaims", ctx, booking, bookings.StatusCancelled, int64(7), 37).Return(nil)

	resp, err := service.CancelBooking(ctx, users.Principal{UserID: uuid.New(), Role: users.RoleAdmin}, booking.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, bookings.StatusCancelled, resp.Status)
		assert.NotNil(t, resp.CancelledAt)
	}

	// Released seats go back to available
	if assert.Len(t, notifier.seatUpdates, 1) {
		assert.Equal(t, map[int]bool{1: true, 2: true}, notifier.seatUpdates[0])
	}
}

func TestCancelBooking_AfterDeparture(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	booking := heldBooking(bookings.StatusConfirmed, time.Now().Add(10*time.Minute))
	trip := bookableTrip(35, 7)
	trip.ID = booking.TripID
	trip.DepartureTime = time.Now().Add(-time.Hour)

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)
	tripRepo.On("GetByID", ctx, booking.TripID).Return(trip, nil)

	resp, err := service.CancelBooking(ctx, users.Principal{UserID: booking.UserID, Role: users.RoleUser}, booking.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
	repo.AssertNotCalled(t, "ReleaseWithClaims", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_TerminalStatus(t *testing.T) {
	repo := new(mockRepository)
	service := newTestService(repo, new(mockTripReader), new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	booking := heldBooking(bookings.StatusExpired, time.Now().Add(-time.Hour))

	repo.On("GetByID", ctx, booking.ID).Return(booking, nil)

	resp, err := service.CancelBooking(ctx, users.Principal{UserID: booking.UserID, Role: users.RoleUser}, booking.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestSweepExpired_SkipsFailuresAndContinues(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	notifier := &fakeNotifier{}
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), notifier)

	ctx := context.Background()
	now := time.Now()

	good := *heldBooking(bookings.StatusPending, now.Add(-time.Minute))
	bad := *heldBooking(bookings.StatusPending, now.Add(-2*time.Minute))

	goodTrip := bookableTrip(20, 1)
	goodTrip.ID = good.TripID
	badTrip := bookableTrip(20, 1)
	badTrip.ID = bad.TripID

	repo.On("FindExpired", ctx, now).Return([]bookings.Booking{good, bad}, nil)
	tripRepo.On("GetByID", ctx, good.TripID).Return(goodTrip, nil)
	tripRepo.On("GetByID", ctx, bad.TripID).Return(badTrip, nil)
	repo.On("ReleaseWithClaims", ctx, mock.MatchedBy(func(b *bookings.Booking) bool { return b.ID == good.ID }),
		bookings.StatusExpired, int64(1), 22).Return(nil)
	repo.On("ReleaseWithClaims", ctx, mock.MatchedBy(func(b *bookings.Booking) bool { return b.ID == bad.ID }),
		bookings.StatusExpired, int64(1), 22).Return(errors.New("db down"))

	count, err := service.SweepExpired(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetSeatAvailability_DerivesLedgerFromClaims(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(2, 1)
	trip.Capacity = 4
	trip.SeatsRemaining = 2

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)
	repo.On("HeldSeatNumbers", ctx, trip.ID).Return([]int{2, 4}, nil)

	resp, err := service.GetSeatAvailability(ctx, trip.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, 4, resp.Capacity)
		assert.Equal(t, 2, resp.SeatsRemaining)
		assert.Equal(t, map[int]bool{1: true, 2: false, 3: true, 4: false}, resp.Seats)
	}
}

func TestGetSeatAvailability_TripNotBookable(t *testing.T) {
	repo := new(mockRepository)
	tripRepo := new(mockTripReader)
	service := newTestService(repo, tripRepo, new(mockTicketIssuer), &fakeNotifier{})

	ctx := context.Background()
	trip := bookableTrip(0, 1)
	trip.Status = trips.StatusCompleted

	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)

	resp, err := service.GetSeatAvailability(ctx, trip.ID)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsInvalidState(err))
}
