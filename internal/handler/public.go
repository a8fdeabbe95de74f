package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/model"
	"github.com/smalltheater/ticketdesk/internal/service"
)

// PublicHandler exposes the unauthenticated catalog and availability
// endpoints visitors use while picking seats.
type PublicHandler struct {
	Catalog *service.CatalogService
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(catalog *service.CatalogService) *PublicHandler {
	if catalog == nil {
		panic("nil catalog passed to NewPublicHandler")
	}
	return &PublicHandler{Catalog: catalog}
}

// showJSON renders a show for responses, splitting the start instant
// into the date and time-of-day strings the booking pages display.
func showJSON(s *model.Show) echo.Map {
	return echo.Map{
		"id":         s.ID,
		"label":      s.Label,
		"date":       s.StartsAt.UTC().Format("2006-01-02"),
		"time":       s.StartsAt.UTC().Format("15:04"),
		"totalSeats": s.TotalSeats,
	}
}

// ListShows handles GET /v1/shows.  Returns every show with its
// remaining availability, recomputed on demand.
func (h *PublicHandler) ListShows(c echo.Context) error {
	items, err := h.Catalog.ListShows(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]echo.Map, 0, len(items))
	for i := range items {
		m := showJSON(&items[i].Show)
		m["availableSeats"] = items[i].Available
		out = append(out, m)
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": out})
}

// ShowSeats handles GET /v1/shows/:id/seats.  Returns the seat
// numbers currently held by active bookings plus the structurally
// blocked positions, so the client can render the seat grid.
func (h *PublicHandler) ShowSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	seats, err := h.Catalog.SeatsForShow(c.Request().Context(), showID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookedSeats":    seats.BookedSeats,
		"blockedSeats":   seats.BlockedSeats,
		"totalSeats":     seats.TotalSeats,
		"availableSeats": seats.Available,
	})
}
