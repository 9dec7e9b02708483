package handler

import (
	"net/http" // HTTP status codes
	"time"     // formatting hold expirations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinebook/seat-reservation/internal/engine"
)

// SeatHandler exposes the seat inventory over HTTP: holding and
// releasing seats, reading the per-holder snapshot, and the one-time
// seat-map generation for a show.  Authentication is performed by
// middleware; handlers read the holder id from the context.
type SeatHandler struct {
	Inventory *engine.SeatInventory
	Shows     engine.ShowStore
}

// NewSeatHandler constructs a SeatHandler.  Dependencies must be
// non-nil.
func NewSeatHandler(inventory *engine.SeatInventory, shows engine.ShowStore) *SeatHandler {
	if inventory == nil || shows == nil {
		panic("nil dependency passed to NewSeatHandler")
	}
	return &SeatHandler{Inventory: inventory, Shows: shows}
}

// HoldSeats handles POST /v1/shows/:id/hold.  The body carries a
// "seat_nos" array; the hold is all-or-nothing and supersedes any
// earlier hold the same holder had on the show.  Returns 201 with the
// expiration timestamp, or 409 listing the seats that were taken.
func (h *SeatHandler) HoldSeats(c echo.Context) error {
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
	// ensure show exists before touching the inventory
	if _, err := h.Shows.ShowByID(c.Request().Context(), showID); err != nil {
		return engineError(c, err)
	}
	res, err := h.Inventory.PlaceHold(c.Request().Context(), showID, holder, body.SeatNos)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"seat_nos":   res.SeatNos,
		"expires_at": res.ExpiresAt.Format(time.RFC3339),
	})
}

// ReleaseHolds handles DELETE /v1/shows/:id/hold.  It releases every
// temporary hold the holder has on the show.  Releasing when nothing
// is held is a no-op, so the endpoint always returns 204.
func (h *SeatHandler) ReleaseHolds(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := showIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.Inventory.ReleaseHold(c.Request().Context(), showID, holder); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSeats handles GET /v1/shows/:id/seats.  It returns the seat map
// with live statuses: AVAILABLE, BOOKED, HELD, or HELD_BY_YOU for the
// requesting holder's own temporary holds.
func (h *SeatHandler) GetSeats(c echo.Context) error {
	holder, err := holderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := showIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if _, err := h.Shows.ShowByID(c.Request().Context(), showID); err != nil {
		return engineError(c, err)
	}
	seats, err := h.Inventory.Snapshot(c.Request().Context(), showID, holder)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"show_id": showID, "seats": seats})
}

// CreateSeats handles POST /v1/shows/:id/seats.  It generates the
// show's seat map from per-type blocks (count + base price).  CLASSIC
// seats are numbered C1..Cn and PREMIUM seats P1..Pn.  The operation
// runs once per show; repeat calls return 409.
func (h *SeatHandler) CreateSeats(c echo.Context) error {
	if _, err := holderID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := showIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Blocks []struct {
			SeatType string `json:"seat_type"`
			Count    int    `json:"count"`
			Price    int    `json:"base_price"`
		} `json:"blocks"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Blocks) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "blocks is required"})
	}
	if _, err := h.Shows.ShowByID(c.Request().Context(), showID); err != nil {
		return engineError(c, err)
	}
	blocks := make([]engine.SeatBlock, 0, len(body.Blocks))
	total := 0
	for _, b := range body.Blocks {
		blocks = append(blocks, engine.SeatBlock{SeatType: b.SeatType, Count: b.Count, Price: b.Price})
		total += b.Count
	}
	if err := h.Inventory.GenerateSeatMap(c.Request().Context(), showID, blocks); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"show_id": showID, "seats_created": total})
}
