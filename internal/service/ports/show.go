// Package ports declares the storage and outbound interfaces the
// service layer depends on.  The MySQL repositories satisfy them in
// production; tests substitute in-memory fakes.
package ports

import (
	"context"
	"time"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// ShowStore persists the show catalog.
type ShowStore interface {
	ListShows(ctx context.Context) ([]model.Show, error)
	// GetShow returns model.ErrShowNotFound when the id is unknown.
	GetShow(ctx context.Context, id uint64) (*model.Show, error)
	CreateShow(ctx context.Context, s *model.Show) error
	UpdateShow(ctx context.Context, s *model.Show) error
	// DeleteShow removes the show and any cancelled bookings still
	// referencing it.  The caller must have verified that no active
	// bookings remain.
	DeleteShow(ctx context.Context, id uint64) error
	// ActiveBookingCount counts non-cancelled bookings for a show.
	ActiveBookingCount(ctx context.Context, showID uint64) (int, error)
	// ShowsStartedBefore lists shows whose start time is before the
	// cutoff, for the retention purge.
	ShowsStartedBefore(ctx context.Context, cutoff time.Time) ([]model.Show, error)
}
