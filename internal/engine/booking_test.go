package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

func TestBookHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1", "C2"})
	require.NoError(t, err)
	ticket, err := f.booking.Book(ctx, f.show.ID, "alice", []string{"C1", "C2"})
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "alice", ticket.HolderID)
	assert.ElementsMatch(t, []string{"C1", "C2"}, ticket.SeatNos)
	assert.Equal(t, 400, ticket.TotalAmount)
	assert.Equal(t, model.TicketConfirmed, ticket.Status)
	assert.Equal(t, f.clock.Now(), ticket.BookedAt)

	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C1", "bob"))
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C2", "bob"))

	got, err := f.booking.Ticket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestBookUnknownShow(t *testing.T) {
	f := newFixture(t)
	_, err := f.booking.Book(context.Background(), 99, "alice", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrShowNotFound)
}

func TestBookWithoutHold(t *testing.T) {
	f := newFixture(t)
	_, err := f.booking.Book(context.Background(), f.show.ID, "alice", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrHoldMismatch)
}

func TestBookExpiredHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	f.clock.Advance(engine.HoldTTL)

	_, err = f.booking.Book(ctx, f.show.ID, "alice", []string{"C1"})
	assert.ErrorIs(t, err, engine.ErrHoldMismatch)
}

// failingTickets wraps the ticket store and rejects every create.
type failingTickets struct {
	engine.TicketStore
}

func (failingTickets) CreateTicket(context.Context, *model.Ticket) error {
	return errors.New("tickets table unavailable")
}

func TestBookRollsBackWhenTicketWriteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := engine.NewBookingEngine(f.store, failingTickets{f.store}, f.inv, nil, f.clock)

	_, err := f.inv.PlaceHold(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	_, err = broken.Book(ctx, f.show.ID, "alice", []string{"C1"})
	require.Error(t, err)

	// the seat came back and the hold is TEMP again, so the holder
	// can retry against a working store
	assert.Equal(t, engine.SeatHeldByYou, f.seatStatus(t, "C1", "alice"))
	ticket, err := f.booking.Book(ctx, f.show.ID, "alice", []string{"C1"})
	require.NoError(t, err)
	assert.Equal(t, 200, ticket.TotalAmount)
}

func TestBookRepricesRemainingSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.pricing.EnsureDefaults(ctx))

	// 7 of 10 seats booked → 70% occupancy; Saturday afternoon show:
	// 1.5 × 0.9 × 1.25 = 1.6875
	seats := []string{"C1", "C2", "C3", "C4", "C5", "C6", "C7"}
	f.holdAndBook(t, "alice", seats...)

	views, err := f.inv.Snapshot(ctx, f.show.ID, "bob")
	require.NoError(t, err)
	for _, v := range views {
		if v.SeatNo == "C8" {
			assert.Equal(t, 337, v.Price)
		}
		if v.SeatNo == "P1" {
			assert.Equal(t, 843, v.Price)
		}
	}
}

func TestConcurrentBookingNoDoubleSell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	var booked int64
	tickets := make([]*model.Ticket, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			holder := fmt.Sprintf("racer-%d", n)
			if _, err := f.inv.PlaceHold(ctx, f.show.ID, holder, []string{"P1"}); err != nil {
				return
			}
			ticket, err := f.booking.Book(ctx, f.show.ID, holder, []string{"P1"})
			if err != nil {
				return
			}
			tickets[n] = ticket
			atomic.AddInt64(&booked, 1)
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1), booked)
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "P1", "observer"))

	var winner *model.Ticket
	for _, tk := range tickets {
		if tk != nil {
			winner = tk
		}
	}
	require.NotNil(t, winner)
	assert.Equal(t, []string{"P1"}, winner.SeatNos)
	assert.Equal(t, 500, winner.TotalAmount)
}
