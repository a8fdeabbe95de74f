// Package service implements the booking engine: seat conflict
// resolution, the booking status lifecycle, show catalog guards and
// the retention purge.  All expected failures are returned as values
// from the model package; nothing here panics across the boundary.
package service

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/smalltheater/ticketdesk/internal/model"
	"github.com/smalltheater/ticketdesk/internal/seatmap"
	"github.com/smalltheater/ticketdesk/internal/service/ports"
)

const (
	// MinSeatsPerBooking and MaxSeatsPerBooking bound a single
	// booking's seat count.
	MinSeatsPerBooking = 1
	MaxSeatsPerBooking = 5
)

// BookingService drives the booking lifecycle.  It performs the
// availability check-then-act sequence; the storage layer's
// uniqueness constraint closes the race window between the check and
// the write, so a losing concurrent creation surfaces here as a seat
// conflict.
type BookingService struct {
	shows    ports.ShowStore
	bookings ports.BookingStore
	notifier ports.Notifier // may be nil
}

// NewBookingService constructs a BookingService.  notifier may be nil
// when no broker is configured.
func NewBookingService(shows ports.ShowStore, bookings ports.BookingStore, notifier ports.Notifier) *BookingService {
	if shows == nil || bookings == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{shows: shows, bookings: bookings, notifier: notifier}
}

// CreateBookingInput carries a complete, client-assembled creation
// request.  The multi-step selection wizard is a client concern; the
// engine only ever sees the final seat set.
type CreateBookingInput struct {
	ShowID uint64
	Name   string
	Email  string
	Seats  []int
}

// BookingDetail pairs a booking with its seat numbers and show for
// responses.
type BookingDetail struct {
	Booking *model.Booking
	Show    *model.Show
	Seats   []int
}

// SeatLabels renders the human labels for the detail's seats.
func (d *BookingDetail) SeatLabels() []string { return seatmap.Labels(d.Seats) }

// CreateBooking validates the request, verifies the one-booking-per-
// email rule and seat availability, and writes the booking with its
// seat assignments as one atomic batch.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*BookingDetail, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		return nil, model.Validationf("name must be at least 2 characters")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	show, err := s.shows.GetShow(ctx, in.ShowID)
	if err != nil {
		return nil, err
	}
	seats, err := validateSeatSet(in.Seats, show.TotalSeats)
	if err != nil {
		return nil, err
	}
	dup, err := s.bookings.HasActiveBooking(ctx, show.ID, email)
	if err != nil {
		return nil, storageErr("create booking", err)
	}
	if dup {
		return nil, model.ErrDuplicateBooking
	}
	booked, err := s.bookings.BookedSeats(ctx, show.ID)
	if err != nil {
		return nil, storageErr("create booking", err)
	}
	if conflicts := intersect(seats, booked); len(conflicts) > 0 {
		return nil, &model.SeatConflictError{Seats: conflicts}
	}
	// Defensive secondary check; the per-seat conflict test above
	// already implies this when seat sets are well-formed.
	if len(seats) > seatmap.Assignable(show.TotalSeats)-len(booked) {
		return nil, model.ErrCapacityExceeded
	}
	b := &model.Booking{
		ID:     uuid.NewString(),
		ShowID: show.ID,
		Name:   name,
		Email:  email,
		Status: model.StatusConfirmed,
	}
	if err := s.bookings.CreateBooking(ctx, b, seats); err != nil {
		if _, ok := err.(*model.SeatConflictError); ok {
			// lost the race to a concurrent writer
			return nil, err
		}
		return nil, storageErr("create booking", err)
	}
	s.notifyCreated(ctx, b, show, seats)
	return &BookingDetail{Booking: b, Show: show, Seats: seats}, nil
}

// GetBooking returns a booking with its seats and show.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*BookingDetail, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	seats, err := s.bookings.SeatsForBooking(ctx, id)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	show, err := s.shows.GetShow(ctx, b.ShowID)
	if err != nil {
		return nil, err
	}
	return &BookingDetail{Booking: b, Show: show, Seats: seats}, nil
}

// ModifySeats replaces a booking's seat set.  The booking's own seats
// are excluded from the conflict check so a visitor can re-select
// seats they already hold; submitting the current set unchanged is a
// no-op success without a write.  Status is not affected.
func (s *BookingService) ModifySeats(ctx context.Context, id string, newSeats []int) (*BookingDetail, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == model.StatusCancelled {
		return nil, model.ErrAlreadyCancelled
	}
	show, err := s.shows.GetShow(ctx, b.ShowID)
	if err != nil {
		return nil, err
	}
	seats, err := validateSeatSet(newSeats, show.TotalSeats)
	if err != nil {
		return nil, err
	}
	own, err := s.bookings.SeatsForBooking(ctx, id)
	if err != nil {
		return nil, storageErr("modify seats", err)
	}
	if sameSeatSet(seats, own) {
		return &BookingDetail{Booking: b, Show: show, Seats: own}, nil
	}
	booked, err := s.bookings.BookedSeats(ctx, show.ID)
	if err != nil {
		return nil, storageErr("modify seats", err)
	}
	others := subtract(booked, own)
	if conflicts := intersect(seats, others); len(conflicts) > 0 {
		return nil, &model.SeatConflictError{Seats: conflicts}
	}
	if err := s.bookings.ReplaceSeats(ctx, id, show.ID, seats); err != nil {
		if _, ok := err.(*model.SeatConflictError); ok {
			return nil, err
		}
		return nil, storageErr("modify seats", err)
	}
	return &BookingDetail{Booking: b, Show: show, Seats: seats}, nil
}

// Cancel transitions a booking to cancelled and releases its seats in
// the same transaction.  The supplied email must case-insensitively
// match the booking's stored email; that knowledge is the ownership
// proof in a system without visitor accounts.
func (s *BookingService) Cancel(ctx context.Context, id, email string) (*model.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), b.Email) {
		return nil, model.ErrEmailMismatch
	}
	seats, err := s.bookings.SeatsForBooking(ctx, id)
	if err != nil {
		return nil, storageErr("cancel booking", err)
	}
	ok, err := s.bookings.CancelBooking(ctx, id)
	if err != nil {
		return nil, storageErr("cancel booking", err)
	}
	if !ok {
		return nil, model.ErrAlreadyCancelled
	}
	updated, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if show, showErr := s.shows.GetShow(ctx, b.ShowID); showErr == nil {
		s.notifyCancelled(ctx, updated, show, seats)
	}
	return updated, nil
}

// CheckIn transitions confirmed -> checked_in as one guarded write.
// Fails with ErrNotConfirmed when the booking does not exist or is in
// any other state; nothing changes on failure.
func (s *BookingService) CheckIn(ctx context.Context, id string) (*model.Booking, error) {
	ok, err := s.bookings.UpdateStatus(ctx, id, model.StatusConfirmed, model.StatusCheckedIn)
	if err != nil {
		return nil, storageErr("check in", err)
	}
	if !ok {
		return nil, model.ErrNotConfirmed
	}
	return s.bookings.GetBooking(ctx, id)
}

// CheckOut undoes a check-in: checked_in -> confirmed, symmetric to
// CheckIn.
func (s *BookingService) CheckOut(ctx context.Context, id string) (*model.Booking, error) {
	ok, err := s.bookings.UpdateStatus(ctx, id, model.StatusCheckedIn, model.StatusConfirmed)
	if err != nil {
		return nil, storageErr("check out", err)
	}
	if !ok {
		return nil, model.ErrNotCheckedIn
	}
	return s.bookings.GetBooking(ctx, id)
}

func (s *BookingService) notifyCreated(ctx context.Context, b *model.Booking, show *model.Show, seats []int) {
	if s.notifier == nil {
		return
	}
	remaining, err := s.remaining(ctx, show)
	if err != nil {
		remaining = -1
	}
	s.notifier.BookingCreated(ctx, b, show, seatmap.Labels(seats), remaining)
}

func (s *BookingService) notifyCancelled(ctx context.Context, b *model.Booking, show *model.Show, seats []int) {
	if s.notifier == nil {
		return
	}
	remaining, err := s.remaining(ctx, show)
	if err != nil {
		remaining = -1
	}
	s.notifier.BookingCancelled(ctx, b, show, seatmap.Labels(seats), remaining)
}

func (s *BookingService) remaining(ctx context.Context, show *model.Show) (int, error) {
	booked, err := s.bookings.BookedSeats(ctx, show.ID)
	if err != nil {
		return 0, err
	}
	return seatmap.Assignable(show.TotalSeats) - len(booked), nil
}

// normalizeEmail trims, lowercases and shape-checks an email address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", model.Validationf("invalid email address")
	}
	return email, nil
}

// validateSeatSet checks a requested seat list's shape: 1–5 entries,
// no duplicates, none structurally blocked, all within the show's
// addressable range.  Returns a sorted copy.
func validateSeatSet(seats []int, totalSeats int) ([]int, error) {
	if len(seats) < MinSeatsPerBooking || len(seats) > MaxSeatsPerBooking {
		return nil, model.Validationf("a booking must hold between %d and %d seats", MinSeatsPerBooking, MaxSeatsPerBooking)
	}
	seen := make(map[int]struct{}, len(seats))
	out := make([]int, 0, len(seats))
	for _, n := range seats {
		if n < 0 || n >= totalSeats {
			return nil, model.Validationf("seat %d is out of range", n)
		}
		if seatmap.IsBlocked(n) {
			return nil, model.Validationf("seat %d does not exist", n)
		}
		if _, dup := seen[n]; dup {
			return nil, model.Validationf("duplicate seat %d", n)
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// intersect returns the sorted intersection of two seat slices.
func intersect(a, b []int) []int {
	set := make(map[int]struct{}, len(b))
	for _, n := range b {
		set[n] = struct{}{}
	}
	var out []int
	for _, n := range a {
		if _, ok := set[n]; ok {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// subtract returns the elements of a not present in b.
func subtract(a, b []int) []int {
	set := make(map[int]struct{}, len(b))
	for _, n := range b {
		set[n] = struct{}{}
	}
	var out []int
	for _, n := range a {
		if _, ok := set[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// sameSeatSet compares two seat lists order-independently.  Both are
// already deduplicated.
func sameSeatSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

// storageErr logs an unexpected storage failure with its operation
// and wraps it for the handler to surface as a generic failure.
func storageErr(op string, err error) error {
	log.Printf("%s: storage error: %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}
