package service

import (
	"context"
	"strings"
	"time"

	"github.com/smalltheater/ticketdesk/internal/model"
	"github.com/smalltheater/ticketdesk/internal/seatmap"
	"github.com/smalltheater/ticketdesk/internal/service/ports"
)

// maxShowCapacity caps administrator-entered capacities at the
// largest grid the row labeling can address, rows A through Z.
const maxShowCapacity = 26 * seatmap.SeatsPerRow

// CatalogService manages the show catalog and the read-only seat
// inventory projections.  Availability is recomputed on demand; no
// cached copy is authoritative.
type CatalogService struct {
	shows    ports.ShowStore
	bookings ports.BookingStore
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(shows ports.ShowStore, bookings ports.BookingStore) *CatalogService {
	if shows == nil || bookings == nil {
		panic("nil store passed to NewCatalogService")
	}
	return &CatalogService{shows: shows, bookings: bookings}
}

// ShowAvailability pairs a show with its current availability.
type ShowAvailability struct {
	Show      model.Show
	Available int
}

// ShowSeats is the seat inventory projection for one show.
type ShowSeats struct {
	BookedSeats  []int
	BlockedSeats []int
	TotalSeats   int
	Available    int
}

// ListShows returns every show with its remaining availability:
// capacity minus structurally blocked positions minus seats held by
// active bookings.
func (s *CatalogService) ListShows(ctx context.Context) ([]ShowAvailability, error) {
	shows, err := s.shows.ListShows(ctx)
	if err != nil {
		return nil, storageErr("list shows", err)
	}
	out := make([]ShowAvailability, 0, len(shows))
	for _, show := range shows {
		booked, err := s.bookings.BookedSeats(ctx, show.ID)
		if err != nil {
			return nil, storageErr("list shows", err)
		}
		out = append(out, ShowAvailability{
			Show:      show,
			Available: seatmap.Assignable(show.TotalSeats) - len(booked),
		})
	}
	return out, nil
}

// SeatsForShow returns the show's booked and blocked seat numbers
// with capacity totals.
func (s *CatalogService) SeatsForShow(ctx context.Context, showID uint64) (*ShowSeats, error) {
	show, err := s.shows.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.BookedSeats(ctx, showID)
	if err != nil {
		return nil, storageErr("show seats", err)
	}
	if booked == nil {
		booked = []int{}
	}
	return &ShowSeats{
		BookedSeats:  booked,
		BlockedSeats: seatmap.BlockedWithin(show.TotalSeats),
		TotalSeats:   show.TotalSeats,
		Available:    seatmap.Assignable(show.TotalSeats) - len(booked),
	}, nil
}

// CreateShow adds a performance to the catalog.
func (s *CatalogService) CreateShow(ctx context.Context, label string, startsAt time.Time, totalSeats int) (*model.Show, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, model.Validationf("label is required")
	}
	if totalSeats < 1 || totalSeats > maxShowCapacity {
		return nil, model.Validationf("total seats must be between 1 and %d", maxShowCapacity)
	}
	show := &model.Show{Label: label, StartsAt: startsAt.UTC(), TotalSeats: totalSeats}
	if err := s.shows.CreateShow(ctx, show); err != nil {
		return nil, storageErr("create show", err)
	}
	return show, nil
}

// UpdateShow edits a show's label, start time and capacity.  Refused
// while any non-cancelled booking references the show, since edits
// could strand already-assigned seats.
func (s *CatalogService) UpdateShow(ctx context.Context, id uint64, label string, startsAt time.Time, totalSeats int) (*model.Show, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, model.Validationf("label is required")
	}
	if totalSeats < 1 || totalSeats > maxShowCapacity {
		return nil, model.Validationf("total seats must be between 1 and %d", maxShowCapacity)
	}
	show, err := s.shows.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.shows.ActiveBookingCount(ctx, id)
	if err != nil {
		return nil, storageErr("update show", err)
	}
	if n > 0 {
		return nil, model.ErrShowHasBookings
	}
	show.Label = label
	show.StartsAt = startsAt.UTC()
	show.TotalSeats = totalSeats
	if err := s.shows.UpdateShow(ctx, show); err != nil {
		return nil, storageErr("update show", err)
	}
	return show, nil
}

// DeleteShow removes a show.  Refused while any non-cancelled
// booking references it; cancelled bookings are removed with it.
func (s *CatalogService) DeleteShow(ctx context.Context, id uint64) error {
	if _, err := s.shows.GetShow(ctx, id); err != nil {
		return err
	}
	n, err := s.shows.ActiveBookingCount(ctx, id)
	if err != nil {
		return storageErr("delete show", err)
	}
	if n > 0 {
		return model.ErrShowHasBookings
	}
	if err := s.shows.DeleteShow(ctx, id); err != nil {
		if err == model.ErrShowNotFound {
			return err
		}
		return storageErr("delete show", err)
	}
	return nil
}

// BookingsForShow lists a show's bookings with their seat numbers for
// the door-staff display.
func (s *CatalogService) BookingsForShow(ctx context.Context, showID uint64) ([]BookingDetail, error) {
	show, err := s.shows.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByShow(ctx, showID)
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	out := make([]BookingDetail, 0, len(bookings))
	for i := range bookings {
		seats, err := s.bookings.SeatsForBooking(ctx, bookings[i].ID)
		if err != nil {
			return nil, storageErr("list bookings", err)
		}
		out = append(out, BookingDetail{Booking: &bookings[i], Show: show, Seats: seats})
	}
	return out, nil
}
