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

func TestRefundPercentageTiers(t *testing.T) {
	start := baseTime.Add(100 * time.Hour)
	cases := []struct {
		lead time.Duration
		want float64
	}{
		{72 * time.Hour, 1.0},
		{48 * time.Hour, 1.0},
		{36 * time.Hour, 0.75},
		{24 * time.Hour, 0.75},
		{18 * time.Hour, 0.50},
		{12 * time.Hour, 0.50},
		{9 * time.Hour, 0.25},
		{6 * time.Hour, 0.25},
		{3 * time.Hour, 0.0},
		{0, 0.0},
	}
	for _, tc := range cases {
		got := engine.RefundPercentage(start.Add(-tc.lead), start)
		assert.Equalf(t, tc.want, got, "lead %s", tc.lead)
	}
}

func TestCancelRefundAmounts(t *testing.T) {
	// a 1000-unit ticket refunds 1000/750/500/250/0 depending on the
	// cancellation lead time
	cases := []struct {
		name       string
		lead       time.Duration
		wantRefund int
	}{
		{"72h", 72 * time.Hour, 1000},
		{"36h", 36 * time.Hour, 750},
		{"18h", 18 * time.Hour, 500},
		{"9h", 9 * time.Hour, 250},
		{"3h", 3 * time.Hour, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			ticket := f.holdAndBook(t, "alice", "C1", "C2", "C3", "C4", "C5")
			require.Equal(t, 1000, ticket.TotalAmount)

			f.clock.Advance(72*time.Hour - tc.lead)
			res, err := f.cancel.Cancel(ctx, ticket.ID, "change of plans")
			require.NoError(t, err)

			assert.Equal(t, model.TicketCancelled, res.TicketStatus)
			assert.Equal(t, tc.wantRefund, res.RefundAmount)
			assert.Equal(t, 1000-tc.wantRefund, res.CancellationCharges)

			if tc.wantRefund > 0 {
				// the simulated refund completes synchronously
				txn, err := f.cancel.RefundStatus(ctx, ticket.ID)
				require.NoError(t, err)
				assert.Equal(t, model.RefundCompleted, txn.Status)
				assert.Equal(t, tc.wantRefund, txn.RefundAmount)
				assert.NotNil(t, txn.CompletedAt)
				updated, err := f.booking.Ticket(ctx, ticket.ID)
				require.NoError(t, err)
				assert.Equal(t, model.RefundCompleted, updated.RefundStatus)
			} else {
				// zero-refund cancellations never create a transaction
				_, err := f.cancel.RefundStatus(ctx, ticket.ID)
				assert.ErrorIs(t, err, engine.ErrRefundNotFound)
				assert.Equal(t, "N/A", res.EstimatedRefundTime)
			}
		})
	}
}

func TestCancelTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.holdAndBook(t, "alice", "C1")

	first, err := f.cancel.Cancel(ctx, ticket.ID, "")
	require.NoError(t, err)

	_, err = f.cancel.Cancel(ctx, ticket.ID, "")
	assert.ErrorIs(t, err, engine.ErrAlreadyCancelled)

	// the first cancellation's outcome is untouched
	updated, err := f.booking.Ticket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketCancelled, updated.Status)
	assert.Equal(t, first.RefundAmount, updated.RefundAmount)
}

func TestCancelAfterShowStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.holdAndBook(t, "alice", "C1")

	f.clock.Advance(73 * time.Hour)
	_, err := f.cancel.Cancel(ctx, ticket.ID, "")
	assert.ErrorIs(t, err, engine.ErrShowPassed)
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C1", "bob"))
}

func TestCancelUnknownTicket(t *testing.T) {
	f := newFixture(t)
	_, err := f.cancel.Cancel(context.Background(), "no-such-ticket", "")
	assert.ErrorIs(t, err, engine.ErrTicketNotFound)
}

func TestCancelReleasesOnlyOwnSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.holdAndBook(t, "alice", "C1", "C2")
	f.holdAndBook(t, "bob", "C3")

	_, err := f.cancel.Cancel(ctx, mine.ID, "")
	require.NoError(t, err)

	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C1", "carol"))
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t, "C2", "carol"))
	assert.Equal(t, model.SeatBooked, f.seatStatus(t, "C3", "carol"))
}

func TestCancelFulfillsWaitlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.holdAndBook(t, "alice", "P1", "P2")
	_, _, err := f.waitlist.Join(ctx, f.show.ID, "bob", model.SeatTypePremium, 1)
	require.NoError(t, err)

	_, err = f.cancel.Cancel(ctx, ticket.ID, "")
	require.NoError(t, err)

	notes := f.notifier.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "bob", notes[0].HolderID)
	assert.Len(t, notes[0].SeatNos, 1)
	assert.Contains(t, notes[0].Message, "Seats are now available")
	assert.Contains(t, notes[0].Message, f.show.Title)
}
