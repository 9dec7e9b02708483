package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/middleware"
)

// holderID extracts the authenticated holder from the context.  It
// returns an error when only a guest identity is present, since every
// reservation operation must be attributable to a real holder.
func holderID(c echo.Context) (string, error) {
	id := middleware.HolderID(c)
	if id == "" || id == "guest" {
		return "", errors.New("unauthenticated")
	}
	return id, nil
}

// showIDParam parses the :id path parameter as a show identifier.
func showIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid show id")
	}
	return id, nil
}

// engineError maps engine errors onto HTTP responses.  Seat conflicts
// carry the offending seat numbers so clients can adjust their
// selection.  Anything unrecognised becomes an opaque 500.
func engineError(c echo.Context, err error) error {
	var unavailable *engine.SeatUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable.SeatNos,
		})
	case errors.Is(err, engine.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, engine.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, engine.ErrRefundNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "refund not found"})
	case errors.Is(err, engine.ErrWaitlistNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "waitlist entry not found"})
	case errors.Is(err, engine.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already cancelled"})
	case errors.Is(err, engine.ErrShowPassed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "show already started"})
	case errors.Is(err, engine.ErrHoldMismatch):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no active hold on the requested seats"})
	case errors.Is(err, engine.ErrAlreadyWaitlisted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already on the waitlist for this show"})
	case errors.Is(err, engine.ErrSeatMapExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat map already generated"})
	case errors.Is(err, engine.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats requested"})
	case errors.Is(err, engine.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
