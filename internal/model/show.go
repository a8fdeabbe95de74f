package model

import "time"

// Show represents one scheduled performance in the theater's single
// auditorium.  Shows are created and maintained by an administrator
// and are referenced by bookings.  Edits and deletion are refused
// while any non-cancelled booking points at the show.
//
// Fields:
//  ID         – primary key identifier.
//  Label      – human display string (usually the piece's title).
//  StartsAt   – performance date and start time in UTC.
//  TotalSeats – addressable seat capacity for this show.
//  CreatedAt  – creation timestamp.
type Show struct {
	ID         uint64    // shows.id
	Label      string    // shows.label
	StartsAt   time.Time // shows.starts_at
	TotalSeats int       // shows.total_seats
	CreatedAt  time.Time // shows.created_at
}
