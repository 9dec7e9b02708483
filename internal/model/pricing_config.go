package model

import "time"

// Pricing factor kinds.  At most one rule of each kind applies to a
// given show and occupancy; the effective multiplier is the product
// of the matched rules.
const (
	FactorDemand = "DEMAND_BASED"
	FactorTime   = "TIME_BASED"
	FactorDay    = "DAY_BASED"
)

// PricingConfig is a named multiplier rule.  Demand rules match a
// half-open occupancy bracket [MinOccupancy, MaxOccupancy), time
// rules match a show-hour bracket [StartHour, EndHour) and day rules
// are keyed WEEKEND or WEEKDAY.  The engine only reads these; editing belongs
// to the pricing-config collaborator.
//
// Fields:
//  ID           – primary key identifier.
//  FactorKind   – DEMAND_BASED, TIME_BASED or DAY_BASED.
//  Key          – rule key, e.g. "HIGH_DEMAND", "EVENING_SHOW", "WEEKEND".
//  Multiplier   – factor applied when the rule matches, e.g. 1.5.
//  Description  – human-readable explanation surfaced as an applied factor.
//  Active       – inactive rules are ignored.
//  MinOccupancy – inclusive lower bound for demand rules.
//  MaxOccupancy – exclusive upper bound for demand rules.
//  StartHour    – inclusive lower bound for time rules.
//  EndHour      – exclusive upper bound for time rules.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type PricingConfig struct {
	ID           uint64    // pricing_configs.id
	FactorKind   string    // pricing_configs.factor_kind
	Key          string    // pricing_configs.config_key
	Multiplier   float64   // pricing_configs.multiplier
	Description  string    // pricing_configs.description
	Active       bool      // pricing_configs.is_active
	MinOccupancy int       // pricing_configs.min_occupancy
	MaxOccupancy int       // pricing_configs.max_occupancy
	StartHour    int       // pricing_configs.start_hour
	EndHour      int       // pricing_configs.end_hour
	CreatedAt    time.Time // pricing_configs.created_at
	UpdatedAt    time.Time // pricing_configs.updated_at
}
