package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cinebook/seat-reservation/internal/model"
)

// PricingEngine composes a multiplicative price factor from demand,
// time-of-day and weekday/weekend rules.  It carries no state of its
// own beyond the injected stores: the multiplier is a pure function
// of the active rule set, the show's start time and the occupancy.
type PricingEngine struct {
	configs PricingStore
	seats   SeatStore
}

// NewPricingEngine constructs a PricingEngine over the given stores.
func NewPricingEngine(configs PricingStore, seats SeatStore) *PricingEngine {
	if configs == nil || seats == nil {
		panic("nil dependency passed to NewPricingEngine")
	}
	return &PricingEngine{configs: configs, seats: seats}
}

// PriceQuote is the full pricing preview for a show: per-seat-type
// base and dynamic prices, the factors that applied and a
// human-readable justification.
type PriceQuote struct {
	BasePrices     map[string]int `json:"base_prices"`
	DynamicPrices  map[string]int `json:"dynamic_prices"`
	AppliedFactors []string       `json:"applied_factors"`
	Multiplier     float64        `json:"total_multiplier"`
	Justification  string         `json:"price_justification"`
	Occupancy      int            `json:"occupancy_percent"`
}

// ComputeMultiplier evaluates the rule snapshot against the show and
// occupancy.  At most one rule of each kind matches: demand rules by
// half-open occupancy bracket [minOccupancy, maxOccupancy), time
// rules by [startHour, endHour) over the show's start hour, day rules
// by the WEEKEND/WEEKDAY key.  The default brackets partition [0,100),
// so a sold-out show matches no demand rule.  Unmatched kinds
// contribute 1.0; an empty rule set therefore yields exactly 1.0.
func ComputeMultiplier(configs []*model.PricingConfig, show *model.Show, occupancyPercent int) (float64, []string) {
	multiplier := 1.0
	var applied []string

	hour := show.StartsAt.Hour()
	dayKey := "WEEKDAY"
	if wd := show.StartsAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		dayKey = "WEEKEND"
	}

	for _, kind := range []string{model.FactorDemand, model.FactorTime, model.FactorDay} {
		for _, cfg := range configs {
			if !cfg.Active || cfg.FactorKind != kind {
				continue
			}
			match := false
			switch kind {
			case model.FactorDemand:
				match = occupancyPercent >= cfg.MinOccupancy && occupancyPercent < cfg.MaxOccupancy
			case model.FactorTime:
				match = hour >= cfg.StartHour && hour < cfg.EndHour
			case model.FactorDay:
				match = cfg.Key == dayKey
			}
			if match {
				multiplier *= cfg.Multiplier
				applied = append(applied, cfg.Description)
				break
			}
		}
	}
	return multiplier, applied
}

// Multiplier loads the active rule set and evaluates it for the
// show at the given occupancy.
func (p *PricingEngine) Multiplier(ctx context.Context, show *model.Show, occupancyPercent int) (float64, []string, error) {
	configs, err := p.configs.ActiveConfigs(ctx)
	if err != nil {
		return 0, nil, err
	}
	m, applied := ComputeMultiplier(configs, show, occupancyPercent)
	return m, applied, nil
}

// Quote computes the current occupancy of the show and prices each
// seat type under the resulting multiplier.  The base price of a
// type is taken from its first seat in seat-map order.
func (p *PricingEngine) Quote(ctx context.Context, show *model.Show) (*PriceQuote, error) {
	seats, err := p.seats.SeatsByShow(ctx, show.ID)
	if err != nil {
		return nil, err
	}
	occupancy := 0
	if len(seats) > 0 {
		booked := 0
		for _, s := range seats {
			if s.Status == model.SeatBooked {
				booked++
			}
		}
		occupancy = booked * 100 / len(seats)
	}

	multiplier, applied, err := p.Multiplier(ctx, show, occupancy)
	if err != nil {
		return nil, err
	}

	base := make(map[string]int)
	dynamic := make(map[string]int)
	for _, s := range seats {
		if _, ok := base[s.SeatType]; !ok {
			base[s.SeatType] = s.Price
			dynamic[s.SeatType] = int(float64(s.Price) * multiplier)
		}
	}

	dayName := "Weekday"
	if wd := show.StartsAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		dayName = "Weekend"
	}
	return &PriceQuote{
		BasePrices:     base,
		DynamicPrices:  dynamic,
		AppliedFactors: applied,
		Multiplier:     multiplier,
		Justification: fmt.Sprintf("Pricing calculated based on: %d%% occupancy, %s time slot, %s",
			occupancy, timeSlotName(show.StartsAt.Hour()), dayName),
		Occupancy: occupancy,
	}, nil
}

// ApplyToShow reprices the show's seats under the current quote so
// future bookings see updated prices.  Confirmed tickets keep the
// amounts they were booked at.
func (p *PricingEngine) ApplyToShow(ctx context.Context, show *model.Show) error {
	quote, err := p.Quote(ctx, show)
	if err != nil {
		return err
	}
	seats, err := p.seats.SeatsByShow(ctx, show.ID)
	if err != nil {
		return err
	}
	prices := make(map[string]int, len(seats))
	for _, s := range seats {
		if dyn, ok := quote.DynamicPrices[s.SeatType]; ok {
			prices[s.SeatNo] = dyn
		}
	}
	return p.seats.UpdateSeatPrices(ctx, show.ID, prices)
}

// EnsureDefaults seeds the standard rule set when the config store
// is empty, so a fresh deployment prices sensibly out of the box.
func (p *PricingEngine) EnsureDefaults(ctx context.Context) error {
	n, err := p.configs.CountConfigs(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return p.configs.CreateConfigs(ctx, DefaultPricingConfigs())
}

// DefaultPricingConfigs returns the built-in rule set: three demand
// brackets, four time slots and the weekend/weekday pair.
func DefaultPricingConfigs() []*model.PricingConfig {
	return []*model.PricingConfig{
		{FactorKind: model.FactorDemand, Key: "HIGH_DEMAND", Multiplier: 1.5, Active: true,
			MinOccupancy: 70, MaxOccupancy: 100,
			Description: "High demand - Less than 30% seats available"},
		{FactorKind: model.FactorDemand, Key: "MEDIUM_DEMAND", Multiplier: 1.2, Active: true,
			MinOccupancy: 50, MaxOccupancy: 70,
			Description: "Medium demand - 30-50% seats available"},
		{FactorKind: model.FactorDemand, Key: "NORMAL_DEMAND", Multiplier: 1.0, Active: true,
			MinOccupancy: 0, MaxOccupancy: 50,
			Description: "Normal demand - More than 50% seats available"},
		{FactorKind: model.FactorTime, Key: "MORNING_SHOW", Multiplier: 0.8, Active: true,
			StartHour: 6, EndHour: 12,
			Description: "Morning show discount (before 12 PM)"},
		{FactorKind: model.FactorTime, Key: "AFTERNOON_SHOW", Multiplier: 0.9, Active: true,
			StartHour: 12, EndHour: 18,
			Description: "Afternoon show (12 PM - 6 PM)"},
		{FactorKind: model.FactorTime, Key: "EVENING_SHOW", Multiplier: 1.3, Active: true,
			StartHour: 18, EndHour: 22,
			Description: "Evening show premium (6 PM - 10 PM)"},
		{FactorKind: model.FactorTime, Key: "NIGHT_SHOW", Multiplier: 1.1, Active: true,
			StartHour: 22, EndHour: 24,
			Description: "Night show (after 10 PM)"},
		{FactorKind: model.FactorDay, Key: "WEEKEND", Multiplier: 1.25, Active: true,
			Description: "Weekend pricing premium"},
		{FactorKind: model.FactorDay, Key: "WEEKDAY", Multiplier: 1.0, Active: true,
			Description: "Regular weekday pricing"},
	}
}

func timeSlotName(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 18:
		return "Afternoon"
	case hour >= 18 && hour < 22:
		return "Evening"
	default:
		return "Night"
	}
}
