package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"busline/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestSeatConflictError_ListsSeats(t *testing.T) {
	err := apperrors.SeatConflictError{Seats: []int{12, 4}}
	assert.Equal(t, "seat(s) 4, 12 already booked", err.Error())
	assert.True(t, apperrors.IsSeatConflict(err))
}

func TestPredicatesSurviveWrapping(t *testing.T) {
	base := apperrors.NotFoundError{Resource: "trip"}
	wrapped := fmt.Errorf("loading trip: %w", base)

	assert.True(t, apperrors.IsNotFound(wrapped))
	assert.False(t, apperrors.IsInvalidState(wrapped))

	capacity := fmt.Errorf("creating booking: %w", apperrors.ErrCapacityConflict)
	assert.True(t, apperrors.IsCapacityConflict(capacity))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("record not found")
	err := apperrors.NotFoundError{Resource: "booking", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "booking not found", err.Error())
}

func TestInvalidStateDefaultsMessage(t *testing.T) {
	assert.Equal(t, "operation not allowed in current state", apperrors.InvalidStateError{}.Error())
	assert.Equal(t, "booking hold has expired", apperrors.InvalidStateError{Msg: "booking hold has expired"}.Error())
}
