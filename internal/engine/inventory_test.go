package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

func TestGenerateSeatMapNumbering(t *testing.T) {
	f := newFixture(t)
	views, err := f.inv.Snapshot(context.Background(), f.show.ID, "alice")
	require.NoError(t, err)
	require.Len(t, views, 10)
	assert.Equal(t, "C1", views[0].SeatNo)
	assert.Equal(t, "C8", views[7].SeatNo)
	assert.Equal(t, "P1", views[8].SeatNo)
	assert.Equal(t, "P2", views[9].SeatNo)
	for _, v := range views {
		assert.Equal(t, model.SeatAvailable, v.Status)
	}

	// the seat map is generated exactly once per show
	err = f.inv.GenerateSeatMap(context.Background(), f.show.ID, []engine.SeatBlock{
		{SeatType: model.SeatTypeClassic, Count: 1, Price: 100},
	})
	assert.ErrorIs(t, err, engine.ErrSeatMapExists)
}

func TestGenerateSeatMapRejectsBadBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	show2 := &model.Show{
		ID:       2,
		Title:    "Dune",
		StartsAt: baseTime.Add(96 * time.Hour),
		EndsAt:   baseTime.Add(99 * time.Hour),
		Status:   "SCHEDULED",
	}
	f.store.AddShow(show2)

	// unknown seat types would collide on the number prefix
	err := f.inv.GenerateSeatMap(ctx, show2.ID, []engine.SeatBlock{
		{SeatType: "COUCH", Count: 4, Price: 300},
	})
	assert.ErrorIs(t, err, engine.ErrInvalidState)

	// two blocks of the same type would duplicate seat numbers
	err = f.inv.GenerateSeatMap(ctx, show2.ID, []engine.SeatBlock{
		{SeatType: model.SeatTypeClassic, Count: 2, Price: 200},
		{SeatType: model.SeatTypeClassic, Count: 2, Price: 250},
	})
	assert.ErrorIs(t, err, engine.ErrInvalidState)

	// a rejected request generates nothing, so a valid map still fits
	views, err := f.inv.Snapshot(ctx, show2.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, views)
	require.NoError(t, f.inv.GenerateSeatMap(ctx, show2.ID, []engine.SeatBlock{
		{SeatType: model.SeatTypeClassic, Count: 2, Price: 200},
		{SeatType: model.SeatTypePremium, Count: 1, Price: 500},
	}))
}

func TestPlaceHoldAndSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1", "C2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"C1", "C2"}, res.SeatNos)
	assert.Equal(t, f.clock.Now().Add(engine.HoldTTL), res.ExpiresAt)

	assert.Equal(t, engine.SeatHeldByYou, f.seatStatus(t, "C1", "alice"))
	assert.Equal(t, engine.SeatHeld, f.seatStatus(t, "C1", "bob"))
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C3", "bob"))
}

func TestPlaceHoldAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C1"})
	require.NoError(t, err)

	_, err = f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1", "C3"})
	var unavailable *engine.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"C1"}, unavailable.SeatNos)
	assert.ErrorIs(t, err, engine.ErrSeatUnavailable)

	// the failed request must not have claimed C3
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C3", "bob"))
}

func TestPlaceHoldSupersedesOwnHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	_, err = f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C2"})
	require.NoError(t, err)

	// the first hold is gone, not stacked
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C1", "bob"))
	assert.Equal(t, engine.SeatHeld, f.seatStatus(t, "C2", "bob"))
}

func TestHoldReleaseRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	require.NoError(t, f.inv.ReleaseHold(ctx, f.show.ID, "alice"))

	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C1", "bob"))
	// releasing again is a no-op
	require.NoError(t, f.inv.ReleaseHold(ctx, f.show.ID, "alice"))

	// and the seat is immediately claimable by someone else
	_, err = f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C1"})
	require.NoError(t, err)
}

func TestHoldExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)

	// one second before the TTL the hold still counts
	f.clock.Advance(engine.HoldTTL - time.Second)
	assert.Equal(t, engine.SeatHeld, f.seatStatus(t, "C1", "bob"))
	_, err = f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrSeatUnavailable)

	// at exactly the TTL it no longer does
	f.clock.Advance(time.Second)
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C1", "bob"))
	_, err = f.inv.CommitBooking(ctx, f.show.ID, "alice", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrHoldMismatch)
	_, err = f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C1"})
	require.NoError(t, err)
}

func TestCommitBookingTotalsPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1", "P1"})
	require.NoError(t, err)
	total, err := f.inv.CommitBooking(ctx, f.show.ID, "alice", []string{"C1", "P1"})
	require.NoError(t, err)
	assert.Equal(t, 700, total)

	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C1", "bob"))
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "P1", "bob"))
}

func TestCommitBookingRequiresLiveHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.CommitBooking(ctx, f.show.ID, "alice", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrHoldMismatch)

	// a hold owned by someone else does not count either
	_, err = f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C1"})
	require.NoError(t, err)
	_, err = f.inv.CommitBooking(ctx, f.show.ID, "alice", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrHoldMismatch)
}

// failingSeats wraps the seat store and fails the next status write.
type failingSeats struct {
	engine.SeatStore
	fail bool
}

func (s *failingSeats) UpdateSeatStatus(ctx context.Context, showID uint64, seatNos []string, status string) error {
	if s.fail {
		s.fail = false
		return errors.New("seats table unavailable")
	}
	return s.SeatStore.UpdateSeatStatus(ctx, showID, seatNos, status)
}

func TestCommitBookingUnwindsHoldsWhenSeatFlipFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := engine.NewSeatInventory(&failingSeats{SeatStore: f.store, fail: true}, f.store, f.clock)

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	_, err = broken.CommitBooking(ctx, f.show.ID, "alice", []string{"C1"})
	require.Error(t, err)

	// the hold went back to TEMP and the seat never left AVAILABLE,
	// so no CONFIRMED hold is stranded and the commit can be retried
	assert.Equal(t, engine.SeatHeldByYou, f.seatStatus(t, "C1", "alice"))
	total, err := broken.CommitBooking(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	assert.Equal(t, 200, total)
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C1", "bob"))
}

func TestCommitBookingRejectsBookedSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.holdAndBook(t, "alice", "C1")

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C1"})
	var unavailable *engine.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"C1"}, unavailable.SeatNos)
}

func TestConfirmedHoldSurvivesSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.holdAndBook(t, "alice", "C1")
	f.clock.Advance(engine.HoldTTL + time.Minute)

	removed, err := f.inv.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C1", "bob"))
}

func TestSweepExpiredRemovesOnlyStaleHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	f.clock.Advance(engine.HoldTTL)
	_, err = f.inv.PlaceHold(ctx, f.show.ID, "bob", []string{"C2"})
	require.NoError(t, err)

	removed, err := f.inv.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C1", "bob"))
	assert.Equal(t, engine.SeatHeld, f.seatStatus(t, "C2", "alice"))
}

func TestConcurrentHoldsSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const holders = 20
	var wg sync.WaitGroup
	var wins, conflicts int64
	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.inv.PlaceHold(ctx, f.show.ID, fmt.Sprintf("holder-%d", n), []string{"C1"})
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
			case errors.Is(err, engine.ErrSeatUnavailable):
				atomic.AddInt64(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(holders-1), conflicts)
}
