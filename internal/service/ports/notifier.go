package ports

import (
	"context"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// Notifier receives booking lifecycle notifications after the storage
// transaction has committed.  Implementations are fire-and-forget:
// they log their own failures and must never affect booking state.
type Notifier interface {
	BookingCreated(ctx context.Context, b *model.Booking, show *model.Show, seatLabels []string, remaining int)
	BookingCancelled(ctx context.Context, b *model.Booking, show *model.Show, seatLabels []string, remaining int)
}
