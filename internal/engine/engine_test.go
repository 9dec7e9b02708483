package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
	"github.com/cinebook/seat-reservation/internal/repository/memory"
)

// fakeClock is an injectable clock the tests advance by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier captures waitlist notifications; it can be told
// to fail every delivery.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []engine.Notification
	fail  error
}

func (n *recordingNotifier) NotifySeatsAvailable(_ context.Context, note engine.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, note)
	return nil
}

func (n *recordingNotifier) notifications() []engine.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]engine.Notification(nil), n.sent...)
}

// baseTime is a Wednesday 14:00 UTC, so default pricing resolves to
// the afternoon weekday factors unless a test moves the show.
var baseTime = time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)

// fixture wires a full engine stack over the in-memory store with a
// controllable clock.  The seeded show starts 72h after baseTime with
// 8 CLASSIC seats at 200 and 2 PREMIUM seats at 500.
type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	inv      *engine.SeatInventory
	pricing  *engine.PricingEngine
	booking  *engine.BookingEngine
	waitlist *engine.WaitlistEngine
	notifier *recordingNotifier
	cancel   *engine.CancellationEngine
	show     *model.Show
}

const fixtureShowID = uint64(1)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := newFakeClock(baseTime)
	show := &model.Show{
		ID:       fixtureShowID,
		Title:    "Interstellar",
		StartsAt: baseTime.Add(72 * time.Hour),
		EndsAt:   baseTime.Add(75 * time.Hour),
		Status:   "SCHEDULED",
	}
	store.AddShow(show)

	inv := engine.NewSeatInventory(store, store, clock)
	require.NoError(t, inv.GenerateSeatMap(context.Background(), show.ID, []engine.SeatBlock{
		{SeatType: model.SeatTypeClassic, Count: 8, Price: 200},
		{SeatType: model.SeatTypePremium, Count: 2, Price: 500},
	}))

	pricing := engine.NewPricingEngine(store, store)
	notifier := &recordingNotifier{}
	waitlist := engine.NewWaitlistEngine(store, store, inv, notifier, clock)
	booking := engine.NewBookingEngine(store, store, inv, pricing, clock)
	cancel := engine.NewCancellationEngine(store, store, store, inv, waitlist, clock)

	return &fixture{
		store:    store,
		clock:    clock,
		inv:      inv,
		pricing:  pricing,
		booking:  booking,
		waitlist: waitlist,
		notifier: notifier,
		cancel:   cancel,
		show:     show,
	}
}

// seatStatus returns the snapshot status of one seat as holderID
// sees it.
func (f *fixture) seatStatus(t *testing.T, seatNo, holderID string) string {
	t.Helper()
	views, err := f.inv.Snapshot(context.Background(), f.show.ID, holderID)
	require.NoError(t, err)
	for _, v := range views {
		if v.SeatNo == seatNo {
			return v.Status
		}
	}
	t.Fatalf("seat %s not found in snapshot", seatNo)
	return ""
}

// holdAndBook places a hold and immediately books it.
func (f *fixture) holdAndBook(t *testing.T, holderID string, seatNos ...string) *model.Ticket {
	t.Helper()
	ctx := context.Background()
	_, err := f.inv.PlaceHold(ctx, f.show.ID, holderID, seatNos)
	require.NoError(t, err)
	ticket, err := f.booking.Book(ctx, f.show.ID, holderID, seatNos)
	require.NoError(t, err)
	return ticket
}
