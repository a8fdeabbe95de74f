// Package queue defines the notification events exchanged over the
// message broker and the publisher/consumer that move them.  Events
// fire after a booking transaction commits; downstream consumers
// (email confirmation, chat webhook, wallet passes) attach here and
// never influence booking state.
package queue

// BookingCreatedEvent is published when a booking is successfully
// created.  It carries enough for downstream senders to compose a
// confirmation without querying the primary database.
type BookingCreatedEvent struct {
	BookingID      string   `json:"booking_id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	ShowID         uint64   `json:"show_id"`
	ShowLabel      string   `json:"show_label"`
	ShowStartsAt   string   `json:"show_starts_at"`
	SeatLabels     []string `json:"seats"`
	RemainingSeats int      `json:"remaining_seats"`
	CreatedAt      string   `json:"created_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and
// its seats return to inventory.
type BookingCancelledEvent struct {
	BookingID      string   `json:"booking_id"`
	Email          string   `json:"email"`
	ShowID         uint64   `json:"show_id"`
	ShowLabel      string   `json:"show_label"`
	SeatLabels     []string `json:"seats"`
	RemainingSeats int      `json:"remaining_seats"`
	CancelledAt    string   `json:"cancelled_at"`
}
