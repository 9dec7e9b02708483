package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cinebook/seat-reservation/internal/model"
)

// CancellationEngine applies the time-tiered refund policy, reverses
// a booking and triggers seat release plus waitlist fulfillment.
type CancellationEngine struct {
	shows     ShowStore
	tickets   TicketStore
	refunds   RefundStore
	inventory *SeatInventory
	waitlist  *WaitlistEngine
	clock     Clock
}

// NewCancellationEngine constructs a CancellationEngine.  The
// waitlist engine may be nil, which disables fulfillment on release.
func NewCancellationEngine(shows ShowStore, tickets TicketStore, refunds RefundStore, inventory *SeatInventory, waitlist *WaitlistEngine, clock Clock) *CancellationEngine {
	if shows == nil || tickets == nil || refunds == nil || inventory == nil || clock == nil {
		panic("nil dependency passed to NewCancellationEngine")
	}
	return &CancellationEngine{shows: shows, tickets: tickets, refunds: refunds, inventory: inventory, waitlist: waitlist, clock: clock}
}

// CancellationResult reports the outcome of a cancellation.
type CancellationResult struct {
	TicketID            string    `json:"ticket_id"`
	TicketStatus        string    `json:"ticket_status"`
	RefundStatus        string    `json:"refund_status"`
	OriginalAmount      int       `json:"original_amount"`
	RefundAmount        int       `json:"refund_amount"`
	RefundPercentage    float64   `json:"refund_percentage"`
	CancellationCharges int       `json:"cancellation_charges"`
	CancelledAt         time.Time `json:"cancelled_at"`
	Message             string    `json:"message"`
	EstimatedRefundTime string    `json:"estimated_refund_time"`
}

// RefundPercentage maps the whole hours remaining until the show to
// the refund fraction:
//
//	>= 48h  100%
//	24-48h   75%
//	12-24h   50%
//	 6-12h   25%
//	 < 6h     0%
func RefundPercentage(now, showStart time.Time) float64 {
	hours := int(showStart.Sub(now).Hours())
	switch {
	case hours >= 48:
		return 1.0
	case hours >= 24:
		return 0.75
	case hours >= 12:
		return 0.50
	case hours >= 6:
		return 0.25
	default:
		return 0.0
	}
}

// Cancel reverses a confirmed booking: it stamps the ticket
// CANCELLED with its refund fields, runs the simulated refund when
// one is due, releases exactly the ticket's own seats and offers
// them to the waitlist.  Waitlist failures are logged, never
// surfaced.
func (c *CancellationEngine) Cancel(ctx context.Context, ticketID, reason string) (*CancellationResult, error) {
	ticket, err := c.tickets.TicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == model.TicketCancelled {
		return nil, ErrAlreadyCancelled
	}
	show, err := c.shows.ShowByID(ctx, ticket.ShowID)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	if now.After(show.StartsAt) {
		return nil, ErrShowPassed
	}

	pct := RefundPercentage(now, show.StartsAt)
	refundAmount := int(float64(ticket.TotalAmount) * pct)
	charges := ticket.TotalAmount - refundAmount

	ticket.Status = model.TicketCancelled
	ticket.CancelledAt = &now
	ticket.RefundAmount = refundAmount
	ticket.RefundPercentage = pct
	ticket.CancellationReason = reason
	if pct > 0 {
		ticket.RefundStatus = model.RefundPending
	} else {
		ticket.RefundStatus = model.RefundNotApplicable
	}
	if err := c.tickets.UpdateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("cancel ticket: %w", err)
	}

	if pct > 0 {
		txn := &model.RefundTransaction{
			ID:                  uuid.NewString(),
			TicketID:            ticket.ID,
			OriginalAmount:      ticket.TotalAmount,
			RefundAmount:        refundAmount,
			RefundPercentage:    pct,
			CancellationCharges: charges,
			Status:              model.RefundPending,
			Method:              "ORIGINAL_PAYMENT_METHOD",
			InitiatedAt:         now,
		}
		if err := c.refunds.CreateRefund(ctx, txn); err != nil {
			return nil, fmt.Errorf("create refund transaction: %w", err)
		}
		c.processRefund(ctx, txn, ticket)
	}

	if err := c.inventory.ReleaseSeats(ctx, ticket.ShowID, ticket.SeatNos); err != nil {
		return nil, err
	}

	if c.waitlist != nil {
		if err := c.waitlist.ProcessRelease(ctx, show); err != nil {
			log.Printf("cancellation: waitlist processing failed for show %d: %v", show.ID, err)
		}
	}

	msg := "Ticket cancelled. No refund applicable due to cancellation policy."
	eta := "N/A"
	if pct > 0 {
		msg = "Ticket cancelled successfully. Refund will be processed within 5-7 business days."
		eta = "5-7 business days"
	}
	return &CancellationResult{
		TicketID:            ticket.ID,
		TicketStatus:        ticket.Status,
		RefundStatus:        ticket.RefundStatus,
		OriginalAmount:      ticket.TotalAmount,
		RefundAmount:        refundAmount,
		RefundPercentage:    pct,
		CancellationCharges: charges,
		CancelledAt:         now,
		Message:             msg,
		EstimatedRefundTime: eta,
	}, nil
}

// processRefund runs the simulated refund synchronously.  The
// transaction advances PENDING → PROCESSING → COMPLETED; a store
// write failing at any step lands it in FAILED with the reason.
// The terminal status is mirrored onto the ticket either way.
func (c *CancellationEngine) processRefund(ctx context.Context, txn *model.RefundTransaction, ticket *model.Ticket) {
	txn.Status = model.RefundProcessing
	if err := c.refunds.UpdateRefund(ctx, txn); err != nil {
		c.failRefund(ctx, txn, ticket, err)
		return
	}

	now := c.clock.Now()
	txn.Status = model.RefundCompleted
	txn.CompletedAt = &now
	if err := c.refunds.UpdateRefund(ctx, txn); err != nil {
		c.failRefund(ctx, txn, ticket, err)
		return
	}

	ticket.RefundStatus = model.RefundCompleted
	if err := c.tickets.UpdateTicket(ctx, ticket); err != nil {
		log.Printf("cancellation: mirror refund status onto ticket %s: %v", ticket.ID, err)
	}
}

func (c *CancellationEngine) failRefund(ctx context.Context, txn *model.RefundTransaction, ticket *model.Ticket, cause error) {
	now := c.clock.Now()
	txn.Status = model.RefundFailed
	txn.FailureReason = cause.Error()
	txn.FailedAt = &now
	if err := c.refunds.UpdateRefund(ctx, txn); err != nil {
		log.Printf("cancellation: record refund failure for ticket %s: %v", ticket.ID, err)
	}
	ticket.RefundStatus = model.RefundFailed
	if err := c.tickets.UpdateTicket(ctx, ticket); err != nil {
		log.Printf("cancellation: mirror refund failure onto ticket %s: %v", ticket.ID, err)
	}
}

// RefundStatus returns the refund transaction for a ticket.
// Zero-refund cancellations never create one, so ErrRefundNotFound
// is a normal answer for them.
func (c *CancellationEngine) RefundStatus(ctx context.Context, ticketID string) (*model.RefundTransaction, error) {
	return c.refunds.RefundByTicketID(ctx, ticketID)
}
