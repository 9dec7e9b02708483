package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing waitlist entry ids

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinebook/seat-reservation/internal/engine"
)

// WaitlistHandler exposes FIFO waitlist registration, withdrawal and
// the holder's queue positions.
type WaitlistHandler struct {
	Waitlist *engine.WaitlistEngine
}

// NewWaitlistHandler constructs a WaitlistHandler.
func NewWaitlistHandler(waitlist *engine.WaitlistEngine) *WaitlistHandler {
	if waitlist == nil {
		panic("nil engine passed to NewWaitlistHandler")
	}
	return &WaitlistHandler{Waitlist: waitlist}
}

// JoinWaitlist handles POST /v1/shows/:id/waitlist.  The body names
// the desired seat type and count.  A holder can have one PENDING
// entry per show; the response carries the 1-based queue position.
func (h *WaitlistHandler) JoinWaitlist(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := showIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		SeatType string `json:"seat_type"`
		Count    int    `json:"count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	entry, position, err := h.Waitlist.Join(c.Request().Context(), showID, holder, body.SeatType, body.Count)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"entry_id":   entry.ID,
		"show_id":    entry.ShowID,
		"seat_type":  entry.SeatType,
		"count":      entry.Count,
		"status":     entry.Status,
		"position":   position,
		"expires_at": entry.ExpiresAt,
	})
}

// CancelEntry handles DELETE /v1/waitlist/:id.  Entries belonging to
// other holders are reported as not found.
func (h *WaitlistHandler) CancelEntry(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid waitlist entry id"})
	}
	if err := h.Waitlist.Cancel(c.Request().Context(), id, holder); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListEntries handles GET /v1/waitlist.  It returns the holder's
// PENDING entries with live queue positions.
func (h *WaitlistHandler) ListEntries(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	positions, err := h.Waitlist.ListForHolder(c.Request().Context(), holder)
	if err != nil {
		return engineError(c, err)
	}
	items := make([]echo.Map, 0, len(positions))
	for _, p := range positions {
		items = append(items, echo.Map{
			"entry_id":   p.Entry.ID,
			"show_id":    p.Entry.ShowID,
			"seat_type":  p.Entry.SeatType,
			"count":      p.Entry.Count,
			"status":     p.Entry.Status,
			"position":   p.Position,
			"expires_at": p.Entry.ExpiresAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
