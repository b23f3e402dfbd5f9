package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NotFoundError indicates the requested trip/booking/ticket does not exist.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// InvalidStateError indicates the operation is illegal for the current
// booking or trip status (e.g. confirming an expired booking).
type InvalidStateError struct {
	Msg string
	Err error
}

func (e InvalidStateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "operation not allowed in current state"
}

func (e InvalidStateError) Unwrap() error { return e.Err }

// SeatConflictError carries the seat numbers that are already held so the
// client can re-offer seat selection.
type SeatConflictError struct {
	Seats []int
	Err   error
}

func (e SeatConflictError) Error() string {
	if len(e.Seats) == 0 {
		return "seat already booked"
	}
	seats := make([]int, len(e.Seats))
	copy(seats, e.Seats)
	sort.Ints(seats)

	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return fmt.Sprintf("seat(s) %s already booked", strings.Join(parts, ", "))
}

func (e SeatConflictError) Unwrap() error { return e.Err }

// ErrCapacityConflict is returned when a revision-guarded update of a trip's
// seats-remaining counter loses the race. Retried internally by the booking
// service and only surfaced once the retry budget is exhausted.
var ErrCapacityConflict = errors.New("trip seat availability changed, please try again")

// ForbiddenError indicates the caller lacks ownership or role.
type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "permission denied"
}

// ValidationError indicates bad input (empty seat list, seat out of range,
// departure after arrival, ...).
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid input"
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsSeatConflict(err error) bool {
	var target SeatConflictError
	return errors.As(err, &target)
}

func IsCapacityConflict(err error) bool {
	return errors.Is(err, ErrCapacityConflict)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
