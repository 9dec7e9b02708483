package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

func TestComputeMultiplierComposition(t *testing.T) {
	// Saturday 19:00 at 80% occupancy: high demand 1.5 × evening 1.3
	// × weekend 1.25 = 2.4375.
	show := &model.Show{StartsAt: time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)}
	m, applied := engine.ComputeMultiplier(engine.DefaultPricingConfigs(), show, 80)
	assert.InDelta(t, 2.4375, m, 1e-9)
	assert.Len(t, applied, 3)
}

func TestComputeMultiplierEmptyRules(t *testing.T) {
	show := &model.Show{StartsAt: time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)}
	m, applied := engine.ComputeMultiplier(nil, show, 80)
	assert.Equal(t, 1.0, m)
	assert.Empty(t, applied)
}

func TestComputeMultiplierDemandBrackets(t *testing.T) {
	// weekday afternoon isolates the demand factor at 0.9 × 1.0
	show := &model.Show{StartsAt: time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)}
	cases := []struct {
		occupancy int
		want      float64
	}{
		{0, 1.0 * 0.9},
		{49, 1.0 * 0.9},
		{50, 1.2 * 0.9},
		{69, 1.2 * 0.9},
		{70, 1.5 * 0.9},
		{99, 1.5 * 0.9},
		// brackets are half-open, so a sold-out show matches no
		// demand rule at all
		{100, 1.0 * 0.9},
	}
	for _, tc := range cases {
		m, _ := engine.ComputeMultiplier(engine.DefaultPricingConfigs(), show, tc.occupancy)
		assert.InDeltaf(t, tc.want, m, 1e-9, "occupancy %d", tc.occupancy)
	}
}

func TestComputeMultiplierOrderIndependent(t *testing.T) {
	// Half-open brackets partition the occupancy range, so boundary
	// occupancies resolve the same way no matter how the rule rows
	// are ordered.
	show := &model.Show{StartsAt: time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)}
	forward := engine.DefaultPricingConfigs()
	reversed := make([]*model.PricingConfig, len(forward))
	for i, cfg := range forward {
		reversed[len(forward)-1-i] = cfg
	}
	for _, occupancy := range []int{0, 50, 69, 70, 100} {
		mf, _ := engine.ComputeMultiplier(forward, show, occupancy)
		mr, _ := engine.ComputeMultiplier(reversed, show, occupancy)
		assert.InDeltaf(t, mf, mr, 1e-9, "occupancy %d", occupancy)
	}
}

func TestComputeMultiplierTimeSlots(t *testing.T) {
	cases := []struct {
		hour int
		want float64
	}{
		{6, 0.8},
		{11, 0.8},
		{12, 0.9},
		{17, 0.9},
		{18, 1.3},
		{21, 1.3},
		{22, 1.1},
		{23, 1.1},
		{2, 1.0}, // small hours match no time rule
	}
	for _, tc := range cases {
		// Wednesday keeps the day factor at 1.0; occupancy 0 keeps
		// demand at 1.0.
		show := &model.Show{StartsAt: time.Date(2026, 9, 2, tc.hour, 0, 0, 0, time.UTC)}
		m, _ := engine.ComputeMultiplier(engine.DefaultPricingConfigs(), show, 0)
		assert.InDeltaf(t, tc.want, m, 1e-9, "hour %d", tc.hour)
	}
}

func TestQuoteEmptyShow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pricing.EnsureDefaults(context.Background()))

	quote, err := f.pricing.Quote(context.Background(), f.show)
	require.NoError(t, err)

	// fixture show: Saturday 14:00, zero occupancy → 1.0 × 0.9 × 1.25
	assert.Equal(t, 0, quote.Occupancy)
	assert.InDelta(t, 1.125, quote.Multiplier, 1e-9)
	assert.Equal(t, 200, quote.BasePrices[model.SeatTypeClassic])
	assert.Equal(t, 500, quote.BasePrices[model.SeatTypePremium])
	assert.Equal(t, 225, quote.DynamicPrices[model.SeatTypeClassic])
	assert.Equal(t, 562, quote.DynamicPrices[model.SeatTypePremium])
	assert.Equal(t, "Pricing calculated based on: 0% occupancy, Afternoon time slot, Weekend", quote.Justification)
}

func TestEnsureDefaultsSeedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.pricing.EnsureDefaults(ctx))
	require.NoError(t, f.pricing.EnsureDefaults(ctx))

	configs, err := f.store.ActiveConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 9)
}
