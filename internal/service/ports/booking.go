package ports

import (
	"context"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// BookingStore persists bookings and their seat assignments.  Methods
// that write a booking together with seat rows are atomic: either
// every row persists or none does.  Seat collisions detected by the
// storage layer's uniqueness constraint are returned as
// *model.SeatConflictError so a losing concurrent writer surfaces as
// an ordinary conflict rather than a storage failure.
type BookingStore interface {
	// BookedSeats returns the seat numbers held by active bookings
	// for a show, ascending, no duplicates.
	BookedSeats(ctx context.Context, showID uint64) ([]int, error)
	// HasActiveBooking reports whether the (lowercased) email holds
	// an active booking for the show.
	HasActiveBooking(ctx context.Context, showID uint64, email string) (bool, error)
	// CreateBooking writes the booking row and all seat assignment
	// rows as one atomic batch.
	CreateBooking(ctx context.Context, b *model.Booking, seats []int) error
	// GetBooking returns model.ErrBookingNotFound for unknown ids.
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	SeatsForBooking(ctx context.Context, id string) ([]int, error)
	// ReplaceSeats atomically swaps a booking's seat assignments for
	// the given set.
	ReplaceSeats(ctx context.Context, bookingID string, showID uint64, seats []int) error
	// UpdateStatus performs a guarded transition: the write applies
	// only if the booking currently has status `from`.  Returns false
	// with no state change when the precondition does not hold
	// (including an unknown id).
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (bool, error)
	// CancelBooking marks the booking cancelled and deletes its seat
	// assignments in one transaction.  Returns false with no state
	// change if the booking is already cancelled.
	CancelBooking(ctx context.Context, id string) (bool, error)
	// ListByShow returns all bookings for a show, newest first.
	ListByShow(ctx context.Context, showID uint64) ([]model.Booking, error)
	// PurgeShow deletes every booking and seat assignment referencing
	// the show, bypassing the status lifecycle.  Returns the number
	// of bookings and seat rows removed.
	PurgeShow(ctx context.Context, showID uint64) (bookings int, seats int, err error)
}
