package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/service"
)

// AdminHandler groups the staff operations: show catalog maintenance,
// door check-in/out driven by scanned booking ids, and the retention
// purge.  All routes sit behind the admin session middleware.
type AdminHandler struct {
	Catalog  *service.CatalogService
	Bookings *service.BookingService
	Purge    *service.PurgeService
}

// NewAdminHandler constructs an AdminHandler.  All dependencies must
// be non-nil.
func NewAdminHandler(catalog *service.CatalogService, bookings *service.BookingService, purge *service.PurgeService) *AdminHandler {
	if catalog == nil || bookings == nil || purge == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Catalog: catalog, Bookings: bookings, Purge: purge}
}

type showRequest struct {
	Label      string `json:"label" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required"`
	TotalSeats int    `json:"totalSeats" validate:"required,min=1"`
}

func (r *showRequest) startsAt() (time.Time, bool) {
	t, err := time.Parse("2006-01-02 15:04", r.Date+" "+r.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// CreateShow handles POST /v1/admin/shows.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request: " + err.Error()})
	}
	startsAt, ok := req.startsAt()
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD and time HH:MM"})
	}
	show, err := h.Catalog.CreateShow(c.Request().Context(), req.Label, startsAt, req.TotalSeats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"show": showJSON(show)})
}

// UpdateShow handles PUT /v1/admin/shows/:id.  Refused with 409 while
// non-cancelled bookings reference the show.
func (h *AdminHandler) UpdateShow(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request: " + err.Error()})
	}
	startsAt, ok := req.startsAt()
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD and time HH:MM"})
	}
	show, err := h.Catalog.UpdateShow(c.Request().Context(), showID, req.Label, startsAt, req.TotalSeats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"show": showJSON(show)})
}

// DeleteShow handles DELETE /v1/admin/shows/:id.  Same guard as
// UpdateShow.
func (h *AdminHandler) DeleteShow(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.Catalog.DeleteShow(c.Request().Context(), showID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/admin/shows/:id/bookings for the door
// staff display.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	details, err := h.Catalog.BookingsForShow(c.Request().Context(), showID)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]echo.Map, 0, len(details))
	for i := range details {
		items = append(items, echo.Map{
			"booking":    details[i].Booking,
			"seats":      details[i].Seats,
			"seatLabels": details[i].SeatLabels(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type checkRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
}

// CheckIn handles POST /v1/admin/checkin, driven by a scanned ticket
// QR code.  Re-scanning an already checked-in ticket returns 409 and
// changes nothing.
func (h *AdminHandler) CheckIn(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookingId is required"})
	}
	b, err := h.Bookings.CheckIn(c.Request().Context(), req.BookingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// CheckOut handles POST /v1/admin/checkout, the undo of CheckIn.
func (h *AdminHandler) CheckOut(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookingId is required"})
	}
	b, err := h.Bookings.CheckOut(c.Request().Context(), req.BookingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// RunPurge handles POST /v1/admin/purge: delete booking data for
// shows past the retention window and report what was removed.
func (h *AdminHandler) RunPurge(c echo.Context) error {
	res, err := h.Purge.Run(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	shows := make([]echo.Map, 0, len(res.Shows))
	for i := range res.Shows {
		shows = append(shows, showJSON(&res.Shows[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"purgedBookings": res.Bookings,
		"purgedSeats":    res.Seats,
		"shows":          shows,
	})
}
