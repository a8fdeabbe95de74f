// Package model defines the domain entities of the booking engine and
// the error values returned across the service boundary.  Handlers
// translate these into HTTP responses; the service layer never panics
// and never returns raw driver errors for expected conditions.
package model

import (
	"errors"
	"fmt"
)

// ErrShowNotFound is returned when a referenced show id is unknown.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound is returned when a booking id is unknown.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateBooking is returned when an email already holds an
// active booking for the same show.  One active booking per person
// per show, regardless of seat sets.
var ErrDuplicateBooking = errors.New("email already has an active booking for this show")

// ErrAlreadyCancelled is returned when a mutation targets a booking
// that is in the terminal cancelled state.
var ErrAlreadyCancelled = errors.New("booking is already cancelled")

// ErrEmailMismatch is returned when the email supplied with a
// cancellation does not match the booking's stored email.  This is
// the ownership check standing in for visitor accounts.
var ErrEmailMismatch = errors.New("email does not match booking")

// ErrNotConfirmed is returned by check-in when the booking does not
// exist or is not currently in the confirmed state.
var ErrNotConfirmed = errors.New("booking not found or not in confirmed state")

// ErrNotCheckedIn is returned by check-out when the booking does not
// exist or is not currently checked in.
var ErrNotCheckedIn = errors.New("booking not found or not checked in")

// ErrCapacityExceeded is returned when a seat request is larger than
// the show's remaining availability.
var ErrCapacityExceeded = errors.New("not enough seats available")

// ErrShowHasBookings is returned when a show edit or deletion is
// refused because non-cancelled bookings still reference the show.
var ErrShowHasBookings = errors.New("show has active bookings")

// ValidationError marks malformed input rejected before any storage
// access.  The reason is safe to surface to the caller verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// SeatConflictError is returned when requested seats are already held
// by another active booking.  Seats lists the offending seat numbers
// so the caller can re-render availability.
type SeatConflictError struct {
	Seats []int
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already taken: %v", e.Seats)
}
