package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/cinebook/seat-reservation/internal/model"
)

// BookingEngine converts a verified hold set into a confirmed
// ticket.  The seat-state change and the ticket write form one
// transactional unit: if the ticket cannot be persisted after the
// seats were flipped, the commit is rolled back so no orphaned
// BOOKED seat survives.
type BookingEngine struct {
	shows     ShowStore
	tickets   TicketStore
	inventory *SeatInventory
	pricing   *PricingEngine
	clock     Clock
}

// NewBookingEngine constructs a BookingEngine.  The pricing engine
// may be nil, which disables post-booking repricing.
func NewBookingEngine(shows ShowStore, tickets TicketStore, inventory *SeatInventory, pricing *PricingEngine, clock Clock) *BookingEngine {
	if shows == nil || tickets == nil || inventory == nil || clock == nil {
		panic("nil dependency passed to NewBookingEngine")
	}
	return &BookingEngine{shows: shows, tickets: tickets, inventory: inventory, pricing: pricing, clock: clock}
}

// Book commits the holder's held seats into a CONFIRMED ticket.  The
// total is the sum of the seats' persisted prices at commit time;
// pricing refresh happens afterwards and only affects future
// bookings.  Returns ErrHoldMismatch when a requested seat lacks a
// live hold by this holder, or SeatUnavailableError when a seat is
// already booked.
func (b *BookingEngine) Book(ctx context.Context, showID uint64, holderID string, seatNos []string) (*model.Ticket, error) {
	seatNos = dedupe(seatNos)
	if len(seatNos) == 0 {
		return nil, ErrNoSeats
	}
	show, err := b.shows.ShowByID(ctx, showID)
	if err != nil {
		return nil, err
	}

	total, err := b.inventory.CommitBooking(ctx, showID, holderID, seatNos)
	if err != nil {
		return nil, err
	}

	ticket := &model.Ticket{
		ID:           uuid.NewString(),
		ShowID:       showID,
		HolderID:     holderID,
		SeatNos:      seatNos,
		TotalAmount:  total,
		Status:       model.TicketConfirmed,
		RefundStatus: model.RefundNotApplicable,
		BookedAt:     b.clock.Now(),
	}
	if err := b.tickets.CreateTicket(ctx, ticket); err != nil {
		if rbErr := b.inventory.RollbackBooking(ctx, showID, holderID, seatNos); rbErr != nil {
			log.Printf("booking: rollback after failed ticket write for show %d: %v", showID, rbErr)
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	// Refresh seat prices for future bookings. Failure here never
	// unwinds the ticket.
	if b.pricing != nil {
		if err := b.pricing.ApplyToShow(ctx, show); err != nil {
			log.Printf("booking: dynamic repricing failed for show %d: %v", showID, err)
		}
	}
	return ticket, nil
}

// Ticket fetches a ticket by id.
func (b *BookingEngine) Ticket(ctx context.Context, id string) (*model.Ticket, error) {
	return b.tickets.TicketByID(ctx, id)
}
