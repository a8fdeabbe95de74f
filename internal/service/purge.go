package service

import (
	"context"
	"log"
	"time"

	"github.com/smalltheater/ticketdesk/internal/model"
	"github.com/smalltheater/ticketdesk/internal/service/ports"
)

// RetentionWindow is how long booking data is kept after a show's
// date before the purge removes it.  Data minimization: visitors'
// names and emails have no business purpose once the show is over.
const RetentionWindow = 14 * 24 * time.Hour

// PurgeService performs the administrative retention sweep.  It
// bypasses the booking state machine entirely: deletion is
// unconditional and irreversible, and no notifications are sent.
type PurgeService struct {
	shows    ports.ShowStore
	bookings ports.BookingStore
	now      func() time.Time
}

// NewPurgeService constructs a PurgeService using the wall clock.
func NewPurgeService(shows ports.ShowStore, bookings ports.BookingStore) *PurgeService {
	return &PurgeService{shows: shows, bookings: bookings, now: time.Now}
}

// PurgeResult reports what a sweep removed, for audit display.
type PurgeResult struct {
	Shows    []model.Show
	Bookings int
	Seats    int
}

// Run deletes all bookings and seat assignments for every show whose
// start time lies more than the retention window in the past.  Each
// show is purged in its own transaction so locks stay short even
// when sweeping a large backlog.  Show rows themselves are kept; the
// administrator can delete them separately once emptied.
func (s *PurgeService) Run(ctx context.Context) (*PurgeResult, error) {
	cutoff := s.now().UTC().Add(-RetentionWindow)
	shows, err := s.shows.ShowsStartedBefore(ctx, cutoff)
	if err != nil {
		return nil, storageErr("retention purge", err)
	}
	res := &PurgeResult{}
	for _, show := range shows {
		bookings, seats, err := s.bookings.PurgeShow(ctx, show.ID)
		if err != nil {
			return nil, storageErr("retention purge", err)
		}
		if bookings == 0 && seats == 0 {
			continue
		}
		res.Shows = append(res.Shows, show)
		res.Bookings += bookings
		res.Seats += seats
	}
	log.Printf("retention purge: removed %d bookings (%d seats) across %d shows",
		res.Bookings, res.Seats, len(res.Shows))
	return res, nil
}
