package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cinebook/seat-reservation/internal/model"
)

// HoldTTL is how long a TEMP hold stays live after creation.  The
// lazy checks (snapshot, commit) and the eager sweep all derive
// expiry from this one constant via holdLive, so the two paths can
// never disagree about whether a hold still counts.
const HoldTTL = 10 * time.Minute

// SweepInterval is how often the background task deletes expired
// TEMP holds.
const SweepInterval = 5 * time.Minute

// SeatInventory is the single point of truth for seat availability
// and hold ownership.  Every mutation of show_seats or seat_holds
// goes through it, serialized per show: two shows never contend,
// but within one show all check-then-act sequences are totally
// ordered.  Reads (snapshot, available view) take the show's read
// lock so no seat flips mid-read.
type SeatInventory struct {
	seats SeatStore
	holds HoldStore
	clock Clock
	ttl   time.Duration

	mu    sync.Mutex
	locks map[uint64]*sync.RWMutex
}

// NewSeatInventory constructs the inventory over the given stores.
func NewSeatInventory(seats SeatStore, holds HoldStore, clock Clock) *SeatInventory {
	if seats == nil || holds == nil || clock == nil {
		panic("nil dependency passed to NewSeatInventory")
	}
	return &SeatInventory{
		seats: seats,
		holds: holds,
		clock: clock,
		ttl:   HoldTTL,
		locks: make(map[uint64]*sync.RWMutex),
	}
}

// lockFor returns the exclusion domain for one show, creating it on
// first use.
func (inv *SeatInventory) lockFor(showID uint64) *sync.RWMutex {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	l, ok := inv.locks[showID]
	if !ok {
		l = &sync.RWMutex{}
		inv.locks[showID] = l
	}
	return l
}

// holdLive reports whether a TEMP hold still counts at the given
// instant. This is the only place TTL arithmetic lives.
func (inv *SeatInventory) holdLive(h *model.SeatHold, now time.Time) bool {
	return h.State == model.HoldTemp && now.Sub(h.CreatedAt) < inv.ttl
}

// expiryCutoff returns the creation time at or before which a TEMP
// hold is expired at the given instant; the inverse of holdLive,
// used by the sweep so both paths agree.
func (inv *SeatInventory) expiryCutoff(now time.Time) time.Time {
	return now.Add(-inv.ttl)
}

// HoldResult reports the outcome of a successful PlaceHold.
type HoldResult struct {
	SeatNos   []string
	ExpiresAt time.Time
}

// SeatView is one seat in a snapshot.  Status is AVAILABLE, BOOKED,
// HELD (by someone else) or HELD_BY_YOU.
type SeatView struct {
	SeatNo   string `json:"seat_no"`
	SeatType string `json:"seat_type"`
	Price    int    `json:"price"`
	Status   string `json:"status"`
}

// Snapshot presentation statuses for held seats.
const (
	SeatHeld      = "HELD"
	SeatHeldByYou = "HELD_BY_YOU"
)

// PlaceHold claims every requested seat for the holder or claims
// none of them.  A seat is claimable when it is AVAILABLE and has no
// live TEMP hold belonging to a different holder.  On success any
// prior holds by the same holder on this show are superseded by
// fresh ones stamped with the current time.  The whole sequence runs
// under the show's write lock, so overlapping concurrent requests
// cannot both win the same seat.
func (inv *SeatInventory) PlaceHold(ctx context.Context, showID uint64, holderID string, seatNos []string) (*HoldResult, error) {
	seatNos = dedupe(seatNos)
	if len(seatNos) == 0 {
		return nil, ErrNoSeats
	}

	l := inv.lockFor(showID)
	l.Lock()
	defer l.Unlock()

	now := inv.clock.Now()
	byNo, err := inv.seatIndex(ctx, showID)
	if err != nil {
		return nil, err
	}
	heldBy, err := inv.liveHolderIndex(ctx, showID, now)
	if err != nil {
		return nil, err
	}

	var unavailable []string
	for _, no := range seatNos {
		seat, ok := byNo[no]
		if !ok || seat.Status != model.SeatAvailable {
			unavailable = append(unavailable, no)
			continue
		}
		if owner, held := heldBy[no]; held && owner != holderID {
			unavailable = append(unavailable, no)
		}
	}
	if len(unavailable) > 0 {
		return nil, &SeatUnavailableError{SeatNos: unavailable}
	}

	// Supersede any earlier holds by this holder before creating the
	// fresh set.
	if err := inv.holds.DeleteTempHoldsByHolder(ctx, showID, holderID); err != nil {
		return nil, fmt.Errorf("supersede holds: %w", err)
	}
	holds := make([]*model.SeatHold, 0, len(seatNos))
	for _, no := range seatNos {
		holds = append(holds, &model.SeatHold{
			ShowID:    showID,
			SeatNo:    no,
			HolderID:  holderID,
			State:     model.HoldTemp,
			CreatedAt: now,
		})
	}
	if err := inv.holds.CreateHolds(ctx, holds); err != nil {
		return nil, fmt.Errorf("create holds: %w", err)
	}
	return &HoldResult{SeatNos: seatNos, ExpiresAt: now.Add(inv.ttl)}, nil
}

// ReleaseHold deletes all of the holder's TEMP holds on the show.
// Releasing when nothing is held is not an error.
func (inv *SeatInventory) ReleaseHold(ctx context.Context, showID uint64, holderID string) error {
	l := inv.lockFor(showID)
	l.Lock()
	defer l.Unlock()
	return inv.holds.DeleteTempHoldsByHolder(ctx, showID, holderID)
}

// Snapshot returns a consistent point-in-time view of every seat in
// the show, folding live holds into the presentation status.
func (inv *SeatInventory) Snapshot(ctx context.Context, showID uint64, holderID string) ([]SeatView, error) {
	l := inv.lockFor(showID)
	l.RLock()
	defer l.RUnlock()

	now := inv.clock.Now()
	seats, err := inv.seats.SeatsByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	heldBy, err := inv.liveHolderIndex(ctx, showID, now)
	if err != nil {
		return nil, err
	}

	views := make([]SeatView, 0, len(seats))
	for _, s := range seats {
		v := SeatView{SeatNo: s.SeatNo, SeatType: s.SeatType, Price: s.Price, Status: s.Status}
		if s.Status == model.SeatAvailable {
			if owner, held := heldBy[s.SeatNo]; held {
				if owner == holderID {
					v.Status = SeatHeldByYou
				} else {
					v.Status = SeatHeld
				}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// AvailableSeats returns the seats currently open for sale: status
// AVAILABLE and no live TEMP hold by anyone.  Used by the waitlist
// when matching freed seats.
func (inv *SeatInventory) AvailableSeats(ctx context.Context, showID uint64) ([]*model.ShowSeat, error) {
	l := inv.lockFor(showID)
	l.RLock()
	defer l.RUnlock()

	now := inv.clock.Now()
	seats, err := inv.seats.SeatsByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	heldBy, err := inv.liveHolderIndex(ctx, showID, now)
	if err != nil {
		return nil, err
	}
	var free []*model.ShowSeat
	for _, s := range seats {
		if s.Status != model.SeatAvailable {
			continue
		}
		if _, held := heldBy[s.SeatNo]; held {
			continue
		}
		free = append(free, s)
	}
	return free, nil
}

// CommitBooking flips the holder's held seats to BOOKED and returns
// the total of their persisted prices.  Every requested seat must
// carry a live TEMP hold owned by the holder (ErrHoldMismatch
// otherwise) and must not already be BOOKED (SeatUnavailableError).
// On success the holder's holds become CONFIRMED and any rival TEMP
// holds on the seats are deleted.
func (inv *SeatInventory) CommitBooking(ctx context.Context, showID uint64, holderID string, seatNos []string) (int, error) {
	seatNos = dedupe(seatNos)
	if len(seatNos) == 0 {
		return 0, ErrNoSeats
	}

	l := inv.lockFor(showID)
	l.Lock()
	defer l.Unlock()

	now := inv.clock.Now()
	byNo, err := inv.seatIndex(ctx, showID)
	if err != nil {
		return 0, err
	}
	heldBy, err := inv.liveHolderIndex(ctx, showID, now)
	if err != nil {
		return 0, err
	}

	total := 0
	var unavailable []string
	for _, no := range seatNos {
		seat, ok := byNo[no]
		if !ok || seat.Status == model.SeatBooked {
			unavailable = append(unavailable, no)
			continue
		}
		if owner, held := heldBy[no]; !held || owner != holderID {
			return 0, ErrHoldMismatch
		}
		total += seat.Price
	}
	if len(unavailable) > 0 {
		return 0, &SeatUnavailableError{SeatNos: unavailable}
	}

	if err := inv.holds.SetHoldState(ctx, showID, holderID, seatNos, model.HoldConfirmed); err != nil {
		return 0, fmt.Errorf("confirm holds: %w", err)
	}
	// A failure past this point must put the holder's holds back to
	// TEMP: the seats never left AVAILABLE, so a stranded CONFIRMED
	// hold would be the only inconsistency.
	if err := inv.holds.DeleteTempHoldsOnSeats(ctx, showID, seatNos, holderID); err != nil {
		_ = inv.holds.SetHoldState(ctx, showID, holderID, seatNos, model.HoldTemp)
		return 0, fmt.Errorf("delete rival holds: %w", err)
	}
	if err := inv.seats.UpdateSeatStatus(ctx, showID, seatNos, model.SeatBooked); err != nil {
		_ = inv.holds.SetHoldState(ctx, showID, holderID, seatNos, model.HoldTemp)
		return 0, fmt.Errorf("book seats: %w", err)
	}
	return total, nil
}

// RollbackBooking unwinds a CommitBooking whose ticket could not be
// persisted: the seats return to AVAILABLE and the holder's holds go
// back to TEMP so no BOOKED seat is left without an owning ticket.
func (inv *SeatInventory) RollbackBooking(ctx context.Context, showID uint64, holderID string, seatNos []string) error {
	l := inv.lockFor(showID)
	l.Lock()
	defer l.Unlock()

	if err := inv.seats.UpdateSeatStatus(ctx, showID, seatNos, model.SeatAvailable); err != nil {
		return fmt.Errorf("reopen seats: %w", err)
	}
	if err := inv.holds.SetHoldState(ctx, showID, holderID, seatNos, model.HoldTemp); err != nil {
		return fmt.Errorf("restore holds: %w", err)
	}
	return nil
}

// ReleaseSeats flips the listed seats back to AVAILABLE and clears
// any remaining ledger entries for them.  Used by cancellation with
// exactly the cancelled ticket's seats.  Seats already AVAILABLE are
// unaffected.
func (inv *SeatInventory) ReleaseSeats(ctx context.Context, showID uint64, seatNos []string) error {
	if len(seatNos) == 0 {
		return nil
	}
	l := inv.lockFor(showID)
	l.Lock()
	defer l.Unlock()

	if err := inv.seats.UpdateSeatStatus(ctx, showID, seatNos, model.SeatAvailable); err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if err := inv.holds.DeleteHoldsOnSeats(ctx, showID, seatNos); err != nil {
		return fmt.Errorf("clear holds: %w", err)
	}
	return nil
}

// SweepExpired deletes all expired TEMP holds across shows and
// returns how many were removed.  Each show is cleaned under its own
// write lock, so a hold can never be confirmed and swept
// concurrently.
func (inv *SeatInventory) SweepExpired(ctx context.Context) (int, error) {
	showIDs, err := inv.holds.ShowIDsWithTempHolds(ctx)
	if err != nil {
		return 0, err
	}
	now := inv.clock.Now()
	removed := 0
	for _, showID := range showIDs {
		l := inv.lockFor(showID)
		l.Lock()
		n, err := inv.holds.DeleteTempHoldsBefore(ctx, showID, inv.expiryCutoff(now))
		l.Unlock()
		if err != nil {
			return removed, fmt.Errorf("sweep show %d: %w", showID, err)
		}
		removed += n
	}
	return removed, nil
}

// SeatBlock describes one segment of a seat map to generate:
// Count seats of SeatType at the given base Price.
type SeatBlock struct {
	SeatType string
	Count    int
	Price    int
}

// GenerateSeatMap creates the show's seats in bulk, numbering them
// by the first letter of the seat type (C1..Cn, P1..Pn).  Blocks must
// use the known seat types, at most one block per type, so seat
// numbers stay unique.  It refuses to run twice for the same show.
func (inv *SeatInventory) GenerateSeatMap(ctx context.Context, showID uint64, blocks []SeatBlock) error {
	if len(blocks) == 0 {
		return ErrNoSeats
	}
	l := inv.lockFor(showID)
	l.Lock()
	defer l.Unlock()

	existing, err := inv.seats.SeatsByShow(ctx, showID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w for show %d", ErrSeatMapExists, showID)
	}
	var seats []*model.ShowSeat
	seen := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		if b.Count <= 0 {
			return fmt.Errorf("%w: bad seat block %+v", ErrInvalidState, b)
		}
		if b.SeatType != model.SeatTypeClassic && b.SeatType != model.SeatTypePremium {
			return fmt.Errorf("%w: unknown seat type %q", ErrInvalidState, b.SeatType)
		}
		if seen[b.SeatType] {
			return fmt.Errorf("%w: duplicate seat block for %s", ErrInvalidState, b.SeatType)
		}
		seen[b.SeatType] = true
		prefix := b.SeatType[:1]
		for i := 1; i <= b.Count; i++ {
			seats = append(seats, &model.ShowSeat{
				ShowID:   showID,
				SeatNo:   fmt.Sprintf("%s%d", prefix, i),
				SeatType: b.SeatType,
				Price:    b.Price,
				Status:   model.SeatAvailable,
			})
		}
	}
	return inv.seats.CreateSeats(ctx, seats)
}

// seatIndex loads the show's seats keyed by seat number.
func (inv *SeatInventory) seatIndex(ctx context.Context, showID uint64) (map[string]*model.ShowSeat, error) {
	seats, err := inv.seats.SeatsByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	byNo := make(map[string]*model.ShowSeat, len(seats))
	for _, s := range seats {
		byNo[s.SeatNo] = s
	}
	return byNo, nil
}

// liveHolderIndex maps seat numbers to the holder of their live TEMP
// hold at the given instant.
func (inv *SeatInventory) liveHolderIndex(ctx context.Context, showID uint64, now time.Time) (map[string]string, error) {
	holds, err := inv.holds.HoldsByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	heldBy := make(map[string]string)
	for _, h := range holds {
		if inv.holdLive(h, now) {
			heldBy[h.SeatNo] = h.HolderID
		}
	}
	return heldBy, nil
}

// dedupe drops empty and repeated seat numbers, preserving order.
func dedupe(seatNos []string) []string {
	out := make([]string, 0, len(seatNos))
	seen := make(map[string]struct{}, len(seatNos))
	for _, no := range seatNos {
		if no == "" {
			continue
		}
		if _, ok := seen[no]; ok {
			continue
		}
		seen[no] = struct{}{}
		out = append(out, no)
	}
	return out
}
