package handler

import (
	"net/http" // HTTP status codes

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinebook/seat-reservation/internal/engine"
)

// BookingHandler converts held seats into confirmed tickets and
// serves ticket lookups.  Holders may only see their own tickets.
type BookingHandler struct {
	Booking *engine.BookingEngine
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(booking *engine.BookingEngine) *BookingHandler {
	if booking == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Booking: booking}
}

// BookSeats handles POST /v1/shows/:id/book.  The body carries the
// "seat_nos" the holder currently holds; the booking commits all of
// them atomically and responds 201 with the ticket.  A lapsed or
// missing hold yields 409.
func (h *BookingHandler) BookSeats(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := showIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		SeatNos []string `json:"seat_nos"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SeatNos) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_nos is required"})
	}
	ticket, err := h.Booking.Book(c.Request().Context(), showID, holder, body.SeatNos)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_id":    ticket.ID,
		"show_id":      ticket.ShowID,
		"seat_nos":     ticket.SeatNos,
		"total_amount": ticket.TotalAmount,
		"status":       ticket.Status,
		"booked_at":    ticket.BookedAt,
	})
}

// GetTicket handles GET /v1/tickets/:id.  Tickets belonging to other
// holders are reported as not found rather than forbidden, so ticket
// ids cannot be probed.
func (h *BookingHandler) GetTicket(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ticket, err := h.Booking.Ticket(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	if ticket.HolderID != holder {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": ticket})
}
