package engine

import (
	"context"
	"time"

	"github.com/cinebook/seat-reservation/internal/model"
)

// The store interfaces below are the engines' only view of
// persistence.  internal/repository implements them on MySQL and
// internal/repository/memory implements them on mutex-protected
// maps.  Stores provide plain reads and writes; all check-then-act
// sequencing happens inside SeatInventory under its per-show locks,
// so store implementations do not need row locking of their own.

// ShowStore resolves shows by id. Implementations return
// ErrShowNotFound for unknown ids.
type ShowStore interface {
	ShowByID(ctx context.Context, id uint64) (*model.Show, error)
}

// SeatStore persists per-show seat rows.
type SeatStore interface {
	// SeatsByShow returns every seat of the show in seat-map order.
	SeatsByShow(ctx context.Context, showID uint64) ([]*model.ShowSeat, error)
	// CreateSeats inserts the seat map in bulk.
	CreateSeats(ctx context.Context, seats []*model.ShowSeat) error
	// UpdateSeatStatus sets the status of the listed seats.
	UpdateSeatStatus(ctx context.Context, showID uint64, seatNos []string, status string) error
	// UpdateSeatPrices rewrites prices keyed by seat number.
	UpdateSeatPrices(ctx context.Context, showID uint64, prices map[string]int) error
}

// HoldStore persists the seat-hold ledger.
type HoldStore interface {
	// HoldsByShow returns every hold for the show, any state.
	HoldsByShow(ctx context.Context, showID uint64) ([]*model.SeatHold, error)
	// CreateHolds inserts holds in bulk.
	CreateHolds(ctx context.Context, holds []*model.SeatHold) error
	// DeleteTempHoldsByHolder removes the holder's TEMP holds on the show.
	DeleteTempHoldsByHolder(ctx context.Context, showID uint64, holderID string) error
	// DeleteTempHoldsOnSeats removes TEMP holds on the listed seats,
	// skipping the given holder. An empty excludeHolder skips nobody.
	DeleteTempHoldsOnSeats(ctx context.Context, showID uint64, seatNos []string, excludeHolder string) error
	// DeleteHoldsOnSeats removes holds of any state on the listed seats.
	DeleteHoldsOnSeats(ctx context.Context, showID uint64, seatNos []string) error
	// SetHoldState transitions the holder's holds on the listed seats.
	SetHoldState(ctx context.Context, showID uint64, holderID string, seatNos []string, state string) error
	// DeleteTempHoldsBefore removes TEMP holds created at or before the
	// cutoff and reports how many were deleted.
	DeleteTempHoldsBefore(ctx context.Context, showID uint64, cutoff time.Time) (int, error)
	// ShowIDsWithTempHolds lists shows that currently have TEMP holds,
	// so the sweep can lock and clean each one in turn.
	ShowIDsWithTempHolds(ctx context.Context) ([]uint64, error)
}

// TicketStore persists confirmed bookings and their owned seats.
// Implementations return ErrTicketNotFound for unknown ids.
type TicketStore interface {
	CreateTicket(ctx context.Context, t *model.Ticket) error
	TicketByID(ctx context.Context, id string) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, t *model.Ticket) error
}

// RefundStore persists refund transactions. Implementations return
// ErrRefundNotFound when a ticket has no transaction.
type RefundStore interface {
	CreateRefund(ctx context.Context, r *model.RefundTransaction) error
	UpdateRefund(ctx context.Context, r *model.RefundTransaction) error
	RefundByTicketID(ctx context.Context, ticketID string) (*model.RefundTransaction, error)
}

// WaitlistStore persists waitlist entries. PendingByShow must order
// by creation time ascending (ties broken by id), the FIFO
// guarantee depends on it. Implementations return
// ErrWaitlistNotFound for unknown ids.
type WaitlistStore interface {
	CreateEntry(ctx context.Context, e *model.WaitlistEntry) error
	UpdateEntry(ctx context.Context, e *model.WaitlistEntry) error
	EntryByID(ctx context.Context, id uint64) (*model.WaitlistEntry, error)
	PendingByShow(ctx context.Context, showID uint64) ([]*model.WaitlistEntry, error)
	PendingByHolder(ctx context.Context, holderID string) ([]*model.WaitlistEntry, error)
	// ExpirePendingBefore marks PENDING entries with expiresAt before
	// now as EXPIRED and reports how many were updated.
	ExpirePendingBefore(ctx context.Context, now time.Time) (int, error)
}

// PricingStore reads the pricing rule set.
type PricingStore interface {
	ActiveConfigs(ctx context.Context) ([]*model.PricingConfig, error)
	CountConfigs(ctx context.Context) (int, error)
	CreateConfigs(ctx context.Context, configs []*model.PricingConfig) error
}
