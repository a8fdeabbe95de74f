// Package handler contains the HTTP handlers.  Handlers bind and
// shape-check requests, call the service layer, and translate domain
// errors into JSON responses; no booking logic lives here.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// writeError maps a domain error to its HTTP response.  Validation
// and conflict errors are normal operation and are not logged;
// anything unmapped is a storage failure, logged by the service and
// surfaced as a generic 500 here.
func writeError(c echo.Context, err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
	}
	var sc *model.SeatConflictError
	if errors.As(err, &sc) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":            "some seats are already taken",
			"conflictingSeats": sc.Seats,
		})
	}
	switch {
	case errors.Is(err, model.ErrShowNotFound),
		errors.Is(err, model.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrDuplicateBooking),
		errors.Is(err, model.ErrAlreadyCancelled),
		errors.Is(err, model.ErrCapacityExceeded),
		errors.Is(err, model.ErrNotConfirmed),
		errors.Is(err, model.ErrNotCheckedIn),
		errors.Is(err, model.ErrShowHasBookings):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrEmailMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	}
	log.Printf("handler: unexpected error on %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
