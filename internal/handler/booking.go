package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/model"
	"github.com/smalltheater/ticketdesk/internal/service"
)

// BookingHandler exposes the visitor booking lifecycle: create, read,
// seat modification and cancellation.  Visitors hold no account; a
// booking is addressed by its opaque id, and destructive actions
// additionally require the booking's email.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type createBookingRequest struct {
	ShowID uint64 `json:"showId" validate:"required"`
	Name   string `json:"name" validate:"required,min=2"`
	Email  string `json:"email" validate:"required,email"`
	Seats  []int  `json:"seats" validate:"required,min=1,max=5"`
}

// Create handles POST /v1/bookings.  On success it returns 201 with
// the fresh booking id; a seat collision returns 409 with the
// conflicting seat numbers so the client can re-render availability.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request: " + err.Error()})
	}
	detail, err := h.Bookings.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		ShowID: req.ShowID,
		Name:   req.Name,
		Email:  req.Email,
		Seats:  req.Seats,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"bookingId":  detail.Booking.ID,
		"seats":      detail.Seats,
		"seatLabels": detail.SeatLabels(),
	})
}

// bookingDetailJSON renders a booking with its seats and show.
func bookingDetailJSON(d *service.BookingDetail) echo.Map {
	return echo.Map{
		"booking":    d.Booking,
		"seats":      d.Seats,
		"seatLabels": d.SeatLabels(),
		"show":       showJSON(d.Show),
	}
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	detail, err := h.Bookings.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookingDetailJSON(detail))
}

type modifySeatsRequest struct {
	Seats []int `json:"seats" validate:"required,min=1,max=5"`
}

// ModifySeats handles PUT /v1/bookings/:id/seats.  Re-submitting the
// booking's current seat set is a no-op success.
func (h *BookingHandler) ModifySeats(c echo.Context) error {
	var req modifySeatsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request: " + err.Error()})
	}
	detail, err := h.Bookings.ModifySeats(c.Request().Context(), c.Param("id"), req.Seats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookingDetailJSON(detail))
}

type cancelRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Cancel handles POST /v1/bookings/:id/cancel.  The supplied email
// must match the booking's; cancellation releases the seats in the
// same transaction.
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request: " + err.Error()})
	}
	b, err := h.Bookings.Cancel(c.Request().Context(), c.Param("id"), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookingId": b.ID,
		"status":    model.StatusCancelled,
	})
}
