package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cinebook/seat-reservation/internal/model"
)

// WaitlistExpiryInterval is how often PENDING entries past their
// expiry are swept.
const WaitlistExpiryInterval = time.Hour

// Notification is the payload handed to the notification sink when
// a waitlist entry is matched.  Delivery (email, SMS, push) is the
// sink's business.
type Notification struct {
	HolderID string   `json:"holder_id"`
	ShowID   uint64   `json:"show_id"`
	Message  string   `json:"message"`
	SeatNos  []string `json:"seat_nos"`
}

// Notifier is the outbound port for waitlist notifications.
type Notifier interface {
	NotifySeatsAvailable(ctx context.Context, n Notification) error
}

// WaitlistEngine manages FIFO registration, the hourly expiry sweep
// and match-on-release notification.  Matching is advisory: a
// NOTIFIED entry's seats are not reserved, the holder still races
// through the normal hold-and-book path.
type WaitlistEngine struct {
	shows     ShowStore
	entries   WaitlistStore
	inventory *SeatInventory
	notifier  Notifier
	clock     Clock
}

// NewWaitlistEngine constructs a WaitlistEngine.  The notifier may
// be nil, in which case matches are only recorded, not delivered.
func NewWaitlistEngine(shows ShowStore, entries WaitlistStore, inventory *SeatInventory, notifier Notifier, clock Clock) *WaitlistEngine {
	if shows == nil || entries == nil || inventory == nil || clock == nil {
		panic("nil dependency passed to NewWaitlistEngine")
	}
	return &WaitlistEngine{shows: shows, entries: entries, inventory: inventory, notifier: notifier, clock: clock}
}

// Join registers the holder on the show's waitlist and returns the
// entry with its 1-based queue position.  A holder can have at most
// one PENDING entry per show, and shows that already started cannot
// be waitlisted.  Entries expire one hour before the show.
func (w *WaitlistEngine) Join(ctx context.Context, showID uint64, holderID, seatType string, count int) (*model.WaitlistEntry, int, error) {
	if count < 1 {
		return nil, 0, ErrNoSeats
	}
	if seatType != model.SeatTypeClassic && seatType != model.SeatTypePremium {
		return nil, 0, fmt.Errorf("%w: unknown seat type %q", ErrInvalidState, seatType)
	}
	show, err := w.shows.ShowByID(ctx, showID)
	if err != nil {
		return nil, 0, err
	}
	now := w.clock.Now()
	if now.After(show.StartsAt) {
		return nil, 0, ErrShowPassed
	}

	pending, err := w.entries.PendingByShow(ctx, showID)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range pending {
		if e.HolderID == holderID {
			return nil, 0, ErrAlreadyWaitlisted
		}
	}

	entry := &model.WaitlistEntry{
		ShowID:    showID,
		HolderID:  holderID,
		SeatType:  seatType,
		Count:     count,
		Status:    model.WaitlistPending,
		CreatedAt: now,
		ExpiresAt: show.StartsAt.Add(-time.Hour),
	}
	if err := w.entries.CreateEntry(ctx, entry); err != nil {
		return nil, 0, fmt.Errorf("create waitlist entry: %w", err)
	}
	// The new entry queues behind every existing PENDING entry.
	return entry, len(pending) + 1, nil
}

// Cancel withdraws a waitlist entry on behalf of holderID.  Entries
// belonging to other holders are reported as not found.  Only PENDING
// and NOTIFIED entries can be cancelled.
func (w *WaitlistEngine) Cancel(ctx context.Context, id uint64, holderID string) error {
	entry, err := w.entries.EntryByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.HolderID != holderID {
		return ErrWaitlistNotFound
	}
	if entry.Status != model.WaitlistPending && entry.Status != model.WaitlistNotified {
		return fmt.Errorf("%w: cannot cancel waitlist entry with status %s", ErrInvalidState, entry.Status)
	}
	entry.Status = model.WaitlistCancelled
	return w.entries.UpdateEntry(ctx, entry)
}

// WaitlistPosition pairs an entry with its live queue position
// (0 when the entry is no longer PENDING).
type WaitlistPosition struct {
	Entry    *model.WaitlistEntry
	Position int
}

// ListForHolder returns the holder's PENDING entries with their
// current queue positions.
func (w *WaitlistEngine) ListForHolder(ctx context.Context, holderID string) ([]WaitlistPosition, error) {
	mine, err := w.entries.PendingByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	out := make([]WaitlistPosition, 0, len(mine))
	for _, e := range mine {
		pos := 0
		pending, err := w.entries.PendingByShow(ctx, e.ShowID)
		if err != nil {
			return nil, err
		}
		for i, p := range pending {
			if p.ID == e.ID {
				pos = i + 1
				break
			}
		}
		out = append(out, WaitlistPosition{Entry: e, Position: pos})
	}
	return out, nil
}

// ProcessRelease matches newly freed seats against the show's
// PENDING entries, strictly oldest first.  An entry is notified only
// when the pass-local pool still holds enough seats of its type;
// matched seats leave the pool so later entries cannot reuse them.
// Unsatisfiable entries stay PENDING and consume nothing.  Failures
// on individual entries are logged and the pass continues.
func (w *WaitlistEngine) ProcessRelease(ctx context.Context, show *model.Show) error {
	pending, err := w.entries.PendingByShow(ctx, show.ID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	available, err := w.inventory.AvailableSeats(ctx, show.ID)
	if err != nil {
		return err
	}
	pool := make(map[string][]string)
	for _, s := range available {
		pool[s.SeatType] = append(pool[s.SeatType], s.SeatNo)
	}

	now := w.clock.Now()
	for _, entry := range pending {
		seats := pool[entry.SeatType]
		if len(seats) < entry.Count {
			continue
		}
		matched := seats[:entry.Count]
		pool[entry.SeatType] = seats[entry.Count:]

		entry.Status = model.WaitlistNotified
		entry.NotifiedAt = &now
		entry.Message = fmt.Sprintf(
			"Seats are now available for your waitlisted show! Please book within 15 minutes. Show: %s at %s",
			show.Title, show.StartsAt.Format(time.RFC3339))
		if err := w.entries.UpdateEntry(ctx, entry); err != nil {
			log.Printf("waitlist: update entry %d: %v", entry.ID, err)
			continue
		}
		if w.notifier != nil {
			n := Notification{
				HolderID: entry.HolderID,
				ShowID:   show.ID,
				Message:  entry.Message,
				SeatNos:  matched,
			}
			if err := w.notifier.NotifySeatsAvailable(ctx, n); err != nil {
				log.Printf("waitlist: notify holder %s for show %d: %v", entry.HolderID, show.ID, err)
			}
		}
	}
	return nil
}

// ExpireStale marks PENDING entries past their expiry as EXPIRED and
// returns how many were updated.  Runs hourly from the scheduler.
func (w *WaitlistEngine) ExpireStale(ctx context.Context) (int, error) {
	return w.entries.ExpirePendingBefore(ctx, w.clock.Now())
}
