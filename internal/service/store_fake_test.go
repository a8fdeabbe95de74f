package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// fakeStore is an in-memory implementation of ports.ShowStore and
// ports.BookingStore.  Like the MySQL schema it keeps seat ownership
// in a per-show map guarded by a single lock, so two concurrent
// creations racing for a seat see exactly the uniqueness behavior the
// uq_show_seat constraint provides: one wins, the other gets a
// SeatConflictError and writes nothing.
type fakeStore struct {
	mu       sync.Mutex
	nextShow uint64
	shows    map[uint64]model.Show
	bookings map[string]model.Booking
	seats    map[uint64]map[int]string // showID -> seat -> bookingID
	writes   int                       // mutating calls, to assert no-op paths
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shows:    make(map[uint64]model.Show),
		bookings: make(map[string]model.Booking),
		seats:    make(map[uint64]map[int]string),
	}
}

func (f *fakeStore) addShow(label string, startsAt time.Time, totalSeats int) model.Show {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextShow++
	s := model.Show{ID: f.nextShow, Label: label, StartsAt: startsAt, TotalSeats: totalSeats, CreatedAt: time.Now().UTC()}
	f.shows[s.ID] = s
	f.seats[s.ID] = make(map[int]string)
	return s
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// --- ports.ShowStore ---

func (f *fakeStore) ListShows(ctx context.Context) ([]model.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Show, 0, len(f.shows))
	for _, s := range f.shows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeStore) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shows[id]
	if !ok {
		return nil, model.ErrShowNotFound
	}
	return &s, nil
}

func (f *fakeStore) CreateShow(ctx context.Context, s *model.Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.nextShow++
	s.ID = f.nextShow
	s.CreatedAt = time.Now().UTC()
	f.shows[s.ID] = *s
	f.seats[s.ID] = make(map[int]string)
	return nil
}

func (f *fakeStore) UpdateShow(ctx context.Context, s *model.Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.shows[s.ID]; !ok {
		return model.ErrShowNotFound
	}
	f.writes++
	f.shows[s.ID] = *s
	return nil
}

func (f *fakeStore) DeleteShow(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.shows[id]; !ok {
		return model.ErrShowNotFound
	}
	f.writes++
	delete(f.shows, id)
	delete(f.seats, id)
	for bid, b := range f.bookings {
		if b.ShowID == id {
			delete(f.bookings, bid)
		}
	}
	return nil
}

func (f *fakeStore) ActiveBookingCount(ctx context.Context, showID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.bookings {
		if b.ShowID == showID && b.Active() {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ShowsStartedBefore(ctx context.Context, cutoff time.Time) ([]model.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Show
	for _, s := range f.shows {
		if s.StartsAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// --- ports.BookingStore ---

func (f *fakeStore) BookedSeats(ctx context.Context, showID uint64) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for seat := range f.seats[showID] {
		out = append(out, seat)
	}
	sort.Ints(out)
	return out, nil
}

func (f *fakeStore) HasActiveBooking(ctx context.Context, showID uint64, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ShowID == showID && b.Active() && strings.EqualFold(b.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, b *model.Booking, seats []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := f.seats[b.ShowID]
	var conflicts []int
	for _, s := range seats {
		if _, taken := owned[s]; taken {
			conflicts = append(conflicts, s)
		}
	}
	if len(conflicts) > 0 {
		return &model.SeatConflictError{Seats: conflicts}
	}
	f.writes++
	b.CreatedAt = time.Now().UTC()
	f.bookings[b.ID] = *b
	for _, s := range seats {
		owned[s] = b.ID
	}
	return nil
}

func (f *fakeStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return &b, nil
}

func (f *fakeStore) SeatsForBooking(ctx context.Context, id string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	var out []int
	for seat, owner := range f.seats[b.ShowID] {
		if owner == id {
			out = append(out, seat)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (f *fakeStore) ReplaceSeats(ctx context.Context, bookingID string, showID uint64, seats []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := f.seats[showID]
	var conflicts []int
	for _, s := range seats {
		if owner, taken := owned[s]; taken && owner != bookingID {
			conflicts = append(conflicts, s)
		}
	}
	if len(conflicts) > 0 {
		return &model.SeatConflictError{Seats: conflicts}
	}
	f.writes++
	for seat, owner := range owned {
		if owner == bookingID {
			delete(owned, seat)
		}
	}
	for _, s := range seats {
		owned[s] = bookingID
	}
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	f.writes++
	b.Status = to
	now := time.Now().UTC()
	switch to {
	case model.StatusCheckedIn:
		b.CheckedInAt = &now
	case model.StatusConfirmed:
		b.CheckedInAt = nil
	}
	f.bookings[id] = b
	return true, nil
}

func (f *fakeStore) CancelBooking(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status == model.StatusCancelled {
		return false, nil
	}
	f.writes++
	b.Status = model.StatusCancelled
	now := time.Now().UTC()
	b.CancelledAt = &now
	f.bookings[id] = b
	owned := f.seats[b.ShowID]
	for seat, owner := range owned {
		if owner == id {
			delete(owned, seat)
		}
	}
	return true, nil
}

func (f *fakeStore) ListByShow(ctx context.Context, showID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.ShowID == showID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) PurgeShow(ctx context.Context, showID uint64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bookings := 0
	for id, b := range f.bookings {
		if b.ShowID == showID {
			delete(f.bookings, id)
			bookings++
		}
	}
	seats := len(f.seats[showID])
	f.seats[showID] = make(map[int]string)
	if bookings > 0 || seats > 0 {
		f.writes++
	}
	return bookings, seats, nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	created   []string // booking ids
	cancelled []string
}

func (n *recordingNotifier) BookingCreated(ctx context.Context, b *model.Booking, show *model.Show, seatLabels []string, remaining int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b.ID)
}

func (n *recordingNotifier) BookingCancelled(ctx context.Context, b *model.Booking, show *model.Show, seatLabels []string, remaining int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, b.ID)
}
