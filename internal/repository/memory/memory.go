// Package memory implements the engine store interfaces on plain
// mutex-protected maps.  It backs the engine tests and single-node
// deployments that run without MySQL; the per-show serialization
// that makes check-then-act sequences safe lives in the engine, so
// this store only has to be individually consistent.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

// Store holds all engine state in memory.  One Store implements
// every store interface the engines consume.
type Store struct {
	mu          sync.RWMutex
	shows       map[uint64]*model.Show
	seats       map[uint64][]*model.ShowSeat
	holds       []*model.SeatHold
	tickets     map[string]*model.Ticket
	refunds     map[string]*model.RefundTransaction // keyed by ticket id
	waitlist    map[uint64]*model.WaitlistEntry
	pricing     []*model.PricingConfig
	nextSeatID  uint64
	nextHoldID  uint64
	nextEntryID uint64
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		shows:    make(map[uint64]*model.Show),
		seats:    make(map[uint64][]*model.ShowSeat),
		tickets:  make(map[string]*model.Ticket),
		refunds:  make(map[string]*model.RefundTransaction),
		waitlist: make(map[uint64]*model.WaitlistEntry),
	}
}

// AddShow registers a show so ShowByID can resolve it.
func (s *Store) AddShow(show *model.Show) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *show
	s.shows[show.ID] = &cp
}

// ShowByID implements engine.ShowStore.
func (s *Store) ShowByID(_ context.Context, id uint64) (*model.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	show, ok := s.shows[id]
	if !ok {
		return nil, engine.ErrShowNotFound
	}
	cp := *show
	return &cp, nil
}

// SeatsByShow implements engine.SeatStore.
func (s *Store) SeatsByShow(_ context.Context, showID uint64) ([]*model.ShowSeat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.seats[showID]
	out := make([]*model.ShowSeat, 0, len(rows))
	for _, seat := range rows {
		cp := *seat
		out = append(out, &cp)
	}
	return out, nil
}

// CreateSeats implements engine.SeatStore.
func (s *Store) CreateSeats(_ context.Context, seats []*model.ShowSeat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range seats {
		cp := *seat
		s.nextSeatID++
		cp.ID = s.nextSeatID
		s.seats[cp.ShowID] = append(s.seats[cp.ShowID], &cp)
	}
	return nil
}

// UpdateSeatStatus implements engine.SeatStore.
func (s *Store) UpdateSeatStatus(_ context.Context, showID uint64, seatNos []string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(seatNos)
	for _, seat := range s.seats[showID] {
		if _, ok := wanted[seat.SeatNo]; ok {
			seat.Status = status
		}
	}
	return nil
}

// UpdateSeatPrices implements engine.SeatStore.
func (s *Store) UpdateSeatPrices(_ context.Context, showID uint64, prices map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range s.seats[showID] {
		if p, ok := prices[seat.SeatNo]; ok {
			seat.Price = p
		}
	}
	return nil
}

// HoldsByShow implements engine.HoldStore.
func (s *Store) HoldsByShow(_ context.Context, showID uint64) ([]*model.SeatHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.SeatHold
	for _, h := range s.holds {
		if h.ShowID == showID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CreateHolds implements engine.HoldStore.
func (s *Store) CreateHolds(_ context.Context, holds []*model.SeatHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range holds {
		cp := *h
		s.nextHoldID++
		cp.ID = s.nextHoldID
		s.holds = append(s.holds, &cp)
	}
	return nil
}

// DeleteTempHoldsByHolder implements engine.HoldStore.
func (s *Store) DeleteTempHoldsByHolder(_ context.Context, showID uint64, holderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteHolds(func(h *model.SeatHold) bool {
		return h.ShowID == showID && h.HolderID == holderID && h.State == model.HoldTemp
	})
	return nil
}

// DeleteTempHoldsOnSeats implements engine.HoldStore.
func (s *Store) DeleteTempHoldsOnSeats(_ context.Context, showID uint64, seatNos []string, excludeHolder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(seatNos)
	s.deleteHolds(func(h *model.SeatHold) bool {
		if h.ShowID != showID || h.State != model.HoldTemp {
			return false
		}
		if excludeHolder != "" && h.HolderID == excludeHolder {
			return false
		}
		_, ok := wanted[h.SeatNo]
		return ok
	})
	return nil
}

// DeleteHoldsOnSeats implements engine.HoldStore.
func (s *Store) DeleteHoldsOnSeats(_ context.Context, showID uint64, seatNos []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(seatNos)
	s.deleteHolds(func(h *model.SeatHold) bool {
		if h.ShowID != showID {
			return false
		}
		_, ok := wanted[h.SeatNo]
		return ok
	})
	return nil
}

// SetHoldState implements engine.HoldStore.
func (s *Store) SetHoldState(_ context.Context, showID uint64, holderID string, seatNos []string, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(seatNos)
	for _, h := range s.holds {
		if h.ShowID == showID && h.HolderID == holderID {
			if _, ok := wanted[h.SeatNo]; ok {
				h.State = state
			}
		}
	}
	return nil
}

// DeleteTempHoldsBefore implements engine.HoldStore.
func (s *Store) DeleteTempHoldsBefore(_ context.Context, showID uint64, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.deleteHolds(func(h *model.SeatHold) bool {
		return h.ShowID == showID && h.State == model.HoldTemp && !h.CreatedAt.After(cutoff)
	})
	return n, nil
}

// ShowIDsWithTempHolds implements engine.HoldStore.
func (s *Store) ShowIDsWithTempHolds(_ context.Context) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[uint64]struct{})
	var ids []uint64
	for _, h := range s.holds {
		if h.State != model.HoldTemp {
			continue
		}
		if _, ok := seen[h.ShowID]; !ok {
			seen[h.ShowID] = struct{}{}
			ids = append(ids, h.ShowID)
		}
	}
	return ids, nil
}

// deleteHolds removes holds matching the predicate and returns how
// many were dropped. Callers must hold the write lock.
func (s *Store) deleteHolds(match func(*model.SeatHold) bool) int {
	kept := s.holds[:0]
	n := 0
	for _, h := range s.holds {
		if match(h) {
			n++
			continue
		}
		kept = append(kept, h)
	}
	s.holds = kept
	return n
}

// CreateTicket implements engine.TicketStore.
func (s *Store) CreateTicket(_ context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = copyTicket(t)
	return nil
}

// TicketByID implements engine.TicketStore.
func (s *Store) TicketByID(_ context.Context, id string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, engine.ErrTicketNotFound
	}
	return copyTicket(t), nil
}

// UpdateTicket implements engine.TicketStore.
func (s *Store) UpdateTicket(_ context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; !ok {
		return engine.ErrTicketNotFound
	}
	s.tickets[t.ID] = copyTicket(t)
	return nil
}

// CreateRefund implements engine.RefundStore.
func (s *Store) CreateRefund(_ context.Context, r *model.RefundTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.refunds[r.TicketID] = &cp
	return nil
}

// UpdateRefund implements engine.RefundStore.
func (s *Store) UpdateRefund(_ context.Context, r *model.RefundTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refunds[r.TicketID]; !ok {
		return engine.ErrRefundNotFound
	}
	cp := *r
	s.refunds[r.TicketID] = &cp
	return nil
}

// RefundByTicketID implements engine.RefundStore.
func (s *Store) RefundByTicketID(_ context.Context, ticketID string) (*model.RefundTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.refunds[ticketID]
	if !ok {
		return nil, engine.ErrRefundNotFound
	}
	cp := *r
	return &cp, nil
}

// CreateEntry implements engine.WaitlistStore.
func (s *Store) CreateEntry(_ context.Context, e *model.WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntryID++
	e.ID = s.nextEntryID
	cp := *e
	s.waitlist[e.ID] = &cp
	return nil
}

// UpdateEntry implements engine.WaitlistStore.
func (s *Store) UpdateEntry(_ context.Context, e *model.WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.waitlist[e.ID]; !ok {
		return engine.ErrWaitlistNotFound
	}
	cp := *e
	s.waitlist[e.ID] = &cp
	return nil
}

// EntryByID implements engine.WaitlistStore.
func (s *Store) EntryByID(_ context.Context, id uint64) (*model.WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.waitlist[id]
	if !ok {
		return nil, engine.ErrWaitlistNotFound
	}
	cp := *e
	return &cp, nil
}

// PendingByShow implements engine.WaitlistStore, ordered by creation
// time ascending with ids breaking ties.
func (s *Store) PendingByShow(_ context.Context, showID uint64) ([]*model.WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.WaitlistEntry
	for _, e := range s.waitlist {
		if e.ShowID == showID && e.Status == model.WaitlistPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortEntries(out)
	return out, nil
}

// PendingByHolder implements engine.WaitlistStore.
func (s *Store) PendingByHolder(_ context.Context, holderID string) ([]*model.WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.WaitlistEntry
	for _, e := range s.waitlist {
		if e.HolderID == holderID && e.Status == model.WaitlistPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortEntries(out)
	return out, nil
}

// ExpirePendingBefore implements engine.WaitlistStore.
func (s *Store) ExpirePendingBefore(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.waitlist {
		if e.Status == model.WaitlistPending && e.ExpiresAt.Before(now) {
			e.Status = model.WaitlistExpired
			n++
		}
	}
	return n, nil
}

// ActiveConfigs implements engine.PricingStore.
func (s *Store) ActiveConfigs(_ context.Context) ([]*model.PricingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.PricingConfig
	for _, c := range s.pricing {
		if c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CountConfigs implements engine.PricingStore.
func (s *Store) CountConfigs(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pricing), nil
}

// CreateConfigs implements engine.PricingStore.
func (s *Store) CreateConfigs(_ context.Context, configs []*model.PricingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range configs {
		cp := *c
		s.pricing = append(s.pricing, &cp)
	}
	return nil
}

func sortEntries(entries []*model.WaitlistEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

func copyTicket(t *model.Ticket) *model.Ticket {
	cp := *t
	cp.SeatNos = append([]string(nil), t.SeatNos...)
	return &cp
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
