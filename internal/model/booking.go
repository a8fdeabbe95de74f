package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	// StatusConfirmed is the initial, active state of every booking.
	StatusConfirmed BookingStatus = "confirmed"
	// StatusCheckedIn means the visitor was admitted at the door.
	// Still active: the seats remain occupied.
	StatusCheckedIn BookingStatus = "checked_in"
	// StatusCancelled is terminal.  A cancelled booking no longer
	// holds any seats and cannot leave this state.
	StatusCancelled BookingStatus = "cancelled"
)

// Booking records a visitor's reservation of seats for one show.
// Tickets are free, so there is no payment reference; the visitor is
// identified only by knowledge of the booking id plus, for
// destructive actions, their email address.
//
// Fields:
//  ID          – opaque globally unique identifier (UUID string).
//  ShowID      – show being booked.
//  Name        – visitor name as entered.
//  Email       – visitor email, stored lowercased for comparison.
//  Status      – current lifecycle state.
//  CreatedAt   – creation timestamp.
//  CancelledAt – when the booking was cancelled (nullable).
//  CheckedInAt – when the visitor was checked in (nullable).
type Booking struct {
	ID          string        `json:"id"`          // bookings.id
	ShowID      uint64        `json:"showId"`      // bookings.show_id
	Name        string        `json:"name"`        // bookings.name
	Email       string        `json:"email"`       // bookings.email
	Status      BookingStatus `json:"status"`      // bookings.status
	CreatedAt   time.Time     `json:"createdAt"`   // bookings.created_at
	CancelledAt *time.Time    `json:"cancelledAt"` // bookings.cancelled_at (nullable)
	CheckedInAt *time.Time    `json:"checkedInAt"` // bookings.checked_in_at (nullable)
}

// Active reports whether the booking counts against seat inventory.
func (b *Booking) Active() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCheckedIn
}

// SeatAssignment binds one seat number to one booking for one show.
// At most one active booking may own a given (show, seat) pair at any
// instant; the storage layer enforces this with a uniqueness
// constraint so concurrent writers cannot both claim a seat.
type SeatAssignment struct {
	BookingID  string // seat_assignments.booking_id
	ShowID     uint64 // seat_assignments.show_id
	SeatNumber int    // seat_assignments.seat_number
}
