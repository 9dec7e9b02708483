package handler

import (
	"net/http" // HTTP status codes

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinebook/seat-reservation/internal/engine"
)

// CancellationHandler exposes ticket cancellation with time-tiered
// refunds and refund status lookups.
type CancellationHandler struct {
	Booking      *engine.BookingEngine
	Cancellation *engine.CancellationEngine
}

// NewCancellationHandler constructs a CancellationHandler.  The
// booking engine is used for ownership checks before cancelling.
func NewCancellationHandler(booking *engine.BookingEngine, cancellation *engine.CancellationEngine) *CancellationHandler {
	if booking == nil || cancellation == nil {
		panic("nil engine passed to NewCancellationHandler")
	}
	return &CancellationHandler{Booking: booking, Cancellation: cancellation}
}

// CancelTicket handles POST /v1/tickets/:id/cancel.  The optional
// body field "reason" is recorded on the ticket.  The refund
// percentage depends on how far before the show the cancellation
// lands; cancelling twice yields 409.
func (h *CancellationHandler) CancelTicket(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	// ownership check before mutating anything
	ticket, err := h.Booking.Ticket(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	if ticket.HolderID != holder {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	// the body is optional; a bind failure just means no reason given
	_ = c.Bind(&body)
	res, err := h.Cancellation.Cancel(c.Request().Context(), id, body.Reason)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetRefundStatus handles GET /v1/tickets/:id/refund.  Cancellations
// inside the zero-refund window create no refund transaction, so this
// endpoint then returns 404.
func (h *CancellationHandler) GetRefundStatus(c echo.Context) error {
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
	txn, err := h.Cancellation.RefundStatus(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": txn})
}
