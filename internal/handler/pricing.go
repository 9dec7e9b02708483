package handler

import (
	"net/http" // HTTP status codes

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinebook/seat-reservation/internal/engine"
)

// PricingHandler serves the pricing preview: base and dynamic prices
// per seat type plus the factors that produced the multiplier.
type PricingHandler struct {
	Pricing *engine.PricingEngine
	Shows   engine.ShowStore
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(pricing *engine.PricingEngine, shows engine.ShowStore) *PricingHandler {
	if pricing == nil || shows == nil {
		panic("nil dependency passed to NewPricingHandler")
	}
	return &PricingHandler{Pricing: pricing, Shows: shows}
}

// GetPricing handles GET /v1/shows/:id/pricing.  The quote reflects
// current occupancy, the show's time slot and the day of week; it is
// a preview, actual charges are computed at booking time.
func (h *PricingHandler) GetPricing(c echo.Context) error {
	showID, err := showIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	show, err := h.Shows.ShowByID(c.Request().Context(), showID)
	if err != nil {
		return engineError(c, err)
	}
	quote, err := h.Pricing.Quote(c.Request().Context(), show)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id": showID,
		"quote":   quote,
	})
}
