package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalltheater/ticketdesk/internal/model"
	"github.com/smalltheater/ticketdesk/internal/seatmap"
)

// newBookingFixture returns a service wired to a fake store holding
// one 68-seat show (seats 0 and 9 structurally blocked, so 66
// assignable).
func newBookingFixture(t *testing.T) (*BookingService, *fakeStore, model.Show, *recordingNotifier) {
	t.Helper()
	store := newFakeStore()
	show := store.addShow("Hamlet", time.Now().UTC().Add(72*time.Hour), 68)
	notifier := &recordingNotifier{}
	return NewBookingService(store, store, notifier), store, show, notifier
}

func availability(t *testing.T, store *fakeStore, show model.Show) int {
	t.Helper()
	booked, err := store.BookedSeats(context.Background(), show.ID)
	require.NoError(t, err)
	return seatmap.Assignable(show.TotalSeats) - len(booked)
}

func TestCreateBooking(t *testing.T) {
	svc, store, show, notifier := newBookingFixture(t)
	ctx := context.Background()

	detail, err := svc.CreateBooking(ctx, CreateBookingInput{
		ShowID: show.ID,
		Name:   "Ada Lovelace",
		Email:  "Ada@Example.COM",
		Seats:  []int{12, 3, 4},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Booking.ID)
	assert.Equal(t, model.StatusConfirmed, detail.Booking.Status)
	assert.Equal(t, "ada@example.com", detail.Booking.Email, "email is stored lowercased")
	assert.Equal(t, []int{3, 4, 12}, detail.Seats, "seats come back sorted")
	assert.Equal(t, []string{"A4", "A5", "B3"}, detail.SeatLabels())
	assert.Equal(t, 63, availability(t, store, show))
	assert.Equal(t, []string{detail.Booking.ID}, notifier.created)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, store, show, _ := newBookingFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateBookingInput
	}{
		{"name too short", CreateBookingInput{ShowID: show.ID, Name: " a ", Email: "a@b.com", Seats: []int{1}}},
		{"bad email", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "not-an-email", Seats: []int{1}}},
		{"no seats", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: nil}},
		{"too many seats", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1, 2, 3, 4, 5, 6}}},
		{"duplicate seat", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1, 1}}},
		{"seat out of range", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{68}}},
		{"negative seat", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{-1}}},
		{"blocked seat", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{0}}},
		{"blocked aisle seat", CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{9, 10}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, tc.in)
			var ve *model.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
	assert.Zero(t, store.writeCount(), "validation failures must not touch storage")
}

func TestCreateBookingShowNotFound(t *testing.T) {
	svc, _, _, _ := newBookingFixture(t)
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		ShowID: 999, Name: "Ada", Email: "a@b.com", Seats: []int{1},
	})
	assert.ErrorIs(t, err, model.ErrShowNotFound)
}

func TestCreateBookingDuplicateEmail(t *testing.T) {
	svc, _, show, _ := newBookingFixture(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Xena", Email: "x@y.com", Seats: []int{5}})
	require.NoError(t, err)

	// same email, same show, different seats: still rejected
	_, err = svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Xena", Email: "X@Y.com", Seats: []int{6}})
	assert.ErrorIs(t, err, model.ErrDuplicateBooking)
}

func TestCreateBookingSeatConflict(t *testing.T) {
	svc, store, show, _ := newBookingFixture(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1, 2}})
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Bob", Email: "b@b.com", Seats: []int{2, 3}})
	var sc *model.SeatConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, []int{2}, sc.Seats)
	assert.Equal(t, 64, availability(t, store, show), "failed creation must not consume seats")
}

func TestCreateBookingConcurrentWriters(t *testing.T) {
	svc, store, show, _ := newBookingFixture(t)
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(ctx, CreateBookingInput{
				ShowID: show.ID,
				Name:   "Racer",
				Email:  "racer" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + "@example.com",
				Seats:  []int{42},
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var sc *model.SeatConflictError
		require.ErrorAs(t, err, &sc, "losers must see a seat conflict, got %v", err)
		assert.Equal(t, []int{42}, sc.Seats)
	}
	assert.Equal(t, 1, winners, "exactly one writer may claim the seat")
	assert.Equal(t, 65, availability(t, store, show))
}

func TestModifySeats(t *testing.T) {
	svc, store, show, _ := newBookingFixture(t)
	ctx := context.Background()

	a, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1, 2}})
	require.NoError(t, err)

	t.Run("resubmitting the current set is a no-op", func(t *testing.T) {
		before := store.writeCount()
		detail, err := svc.ModifySeats(ctx, a.Booking.ID, []int{2, 1})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, detail.Seats)
		assert.Equal(t, before, store.writeCount())
	})

	t.Run("can grow while keeping own seats", func(t *testing.T) {
		detail, err := svc.ModifySeats(ctx, a.Booking.ID, []int{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, detail.Seats)
		assert.Equal(t, 63, availability(t, store, show))
	})

	t.Run("conflicts with other bookings are rejected", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Bob", Email: "b@b.com", Seats: []int{20}})
		require.NoError(t, err)

		_, err = svc.ModifySeats(ctx, a.Booking.ID, []int{3, 20})
		var sc *model.SeatConflictError
		require.ErrorAs(t, err, &sc)
		assert.Equal(t, []int{20}, sc.Seats)
	})

	t.Run("blocked seat is rejected before storage", func(t *testing.T) {
		before := store.writeCount()
		_, err := svc.ModifySeats(ctx, a.Booking.ID, []int{9})
		var ve *model.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, before, store.writeCount())
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := svc.ModifySeats(ctx, "deadbeef", []int{1})
		assert.ErrorIs(t, err, model.ErrBookingNotFound)
	})
}

func TestModifySeatsCancelledBooking(t *testing.T) {
	svc, _, show, _ := newBookingFixture(t)
	ctx := context.Background()

	a, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1}})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, a.Booking.ID, "a@b.com")
	require.NoError(t, err)

	_, err = svc.ModifySeats(ctx, a.Booking.ID, []int{2})
	assert.ErrorIs(t, err, model.ErrAlreadyCancelled)
}

func TestCancel(t *testing.T) {
	svc, store, show, notifier := newBookingFixture(t)
	ctx := context.Background()

	a, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1, 2, 3}})
	require.NoError(t, err)

	t.Run("email must match case-insensitively", func(t *testing.T) {
		_, err := svc.Cancel(ctx, a.Booking.ID, "wrong@b.com")
		assert.ErrorIs(t, err, model.ErrEmailMismatch)

		b, err := svc.Cancel(ctx, a.Booking.ID, "A@B.COM")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, b.Status)
		assert.NotNil(t, b.CancelledAt)
	})

	t.Run("cancellation releases all seats", func(t *testing.T) {
		assert.Equal(t, 66, availability(t, store, show))
		assert.Equal(t, []string{a.Booking.ID}, notifier.cancelled)
	})

	t.Run("second cancellation is rejected", func(t *testing.T) {
		_, err := svc.Cancel(ctx, a.Booking.ID, "a@b.com")
		assert.ErrorIs(t, err, model.ErrAlreadyCancelled)
	})

	t.Run("freed seats can be rebooked by the same email", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1}})
		assert.NoError(t, err)
	})
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _, _, _ := newBookingFixture(t)
	_, err := svc.Cancel(context.Background(), "deadbeef", "a@b.com")
	assert.ErrorIs(t, err, model.ErrBookingNotFound)
}

func TestCheckInCheckOut(t *testing.T) {
	svc, _, show, _ := newBookingFixture(t)
	ctx := context.Background()

	a, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1}})
	require.NoError(t, err)
	id := a.Booking.ID

	// confirmed -> checked_in
	b, err := svc.CheckIn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCheckedIn, b.Status)
	assert.NotNil(t, b.CheckedInAt)

	// re-scanning the same ticket changes nothing
	_, err = svc.CheckIn(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotConfirmed)
	detail, err := svc.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCheckedIn, detail.Booking.Status)

	// checked_in -> confirmed (undo)
	undone, err := svc.CheckOut(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, undone.Status)
	assert.Nil(t, undone.CheckedInAt)

	// checking out twice fails
	_, err = svc.CheckOut(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotCheckedIn)

	// symmetry: checking in again succeeds
	again, err := svc.CheckIn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCheckedIn, again.Status)
}

func TestCheckInGuards(t *testing.T) {
	svc, _, show, _ := newBookingFixture(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "deadbeef")
	assert.ErrorIs(t, err, model.ErrNotConfirmed)

	_, err = svc.CheckOut(ctx, "deadbeef")
	assert.ErrorIs(t, err, model.ErrNotCheckedIn)

	a, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Ada", Email: "a@b.com", Seats: []int{1}})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, a.Booking.ID, "a@b.com")
	require.NoError(t, err)

	// no transition out of cancelled
	_, err = svc.CheckIn(ctx, a.Booking.ID)
	assert.ErrorIs(t, err, model.ErrNotConfirmed)
	got, err := svc.GetBooking(ctx, a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Booking.Status)
}

// TestBookingLifecycleScenario walks the full 68-seat scenario:
// booking A takes {1,2}; B's {2,3} is rejected with the conflicting
// seat; A grows to {1,2,3}; cancelling A restores availability to the
// full 66 assignable seats.
func TestBookingLifecycleScenario(t *testing.T) {
	svc, store, show, _ := newBookingFixture(t)
	ctx := context.Background()

	a, err := svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Alice", Email: "alice@example.com", Seats: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 64, availability(t, store, show))

	_, err = svc.CreateBooking(ctx, CreateBookingInput{ShowID: show.ID, Name: "Bruno", Email: "bruno@example.com", Seats: []int{2, 3}})
	var sc *model.SeatConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, []int{2}, sc.Seats)

	grown, err := svc.ModifySeats(ctx, a.Booking.ID, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, grown.Seats)
	assert.Equal(t, 63, availability(t, store, show))

	_, err = svc.Cancel(ctx, a.Booking.ID, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 66, availability(t, store, show))
}
