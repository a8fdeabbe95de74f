// Package seatmap is the pure seat-topology layer.  It maps 0-based
// seat numbers onto the auditorium's fixed row grid and knows which
// seat numbers are structurally blocked (positions that do not
// physically exist).  It holds no state and touches no storage; range
// checks against a show's capacity are the caller's concern.
package seatmap

import "fmt"

// SeatsPerRow is the width of the auditorium grid.  Seat number n
// sits in row n/SeatsPerRow at position n%SeatsPerRow.
const SeatsPerRow = 10

// blocked holds seat numbers that are never assignable regardless of
// booking state.  The front row's two aisle-most positions were
// removed when the wheelchair ramp was installed.
var blocked = map[int]bool{
	0: true,
	9: true,
}

// Row returns the 0-based row index of a seat number.
func Row(seat int) int { return seat / SeatsPerRow }

// RowLabel returns the letter of the seat's row: A for the front row,
// B for the next, and so on.
func RowLabel(seat int) string {
	return string(rune('A' + Row(seat)))
}

// Label renders the human seat label, e.g. seat 12 -> "B3".  Seats
// within a row are numbered from 1 for display.
func Label(seat int) string {
	return fmt.Sprintf("%s%d", RowLabel(seat), seat%SeatsPerRow+1)
}

// Labels renders labels for a slice of seat numbers, preserving order.
func Labels(seats []int) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = Label(s)
	}
	return out
}

// IsBlocked reports whether a seat number is structurally blocked.
func IsBlocked(seat int) bool { return blocked[seat] }

// BlockedWithin returns the blocked seat numbers that fall inside a
// show's addressable range [0, totalSeats), ascending.
func BlockedWithin(totalSeats int) []int {
	out := make([]int, 0, len(blocked))
	for s := 0; s < totalSeats; s++ {
		if blocked[s] {
			out = append(out, s)
		}
	}
	return out
}

// Assignable returns how many seats of a show's capacity can actually
// be booked, i.e. the capacity minus blocked positions in range.
func Assignable(totalSeats int) int {
	return totalSeats - len(BlockedWithin(totalSeats))
}
