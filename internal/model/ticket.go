package model

import "time"

// Ticket statuses.
const (
	TicketConfirmed = "CONFIRMED"
	TicketCancelled = "CANCELLED"
)

// Ticket records a confirmed booking.  It owns the exact set of
// seat numbers it was booked with so that cancellation releases
// only those seats and nothing else.  Apart from the cancellation
// transition a ticket is immutable once created.
//
// Fields:
//  ID               – UUID assigned at booking time.
//  ShowID           – show being booked.
//  HolderID         – user who made the booking.
//  SeatNos          – seat numbers owned by this ticket.
//  TotalAmount      – total price paid across all seats.
//  Status           – CONFIRMED or CANCELLED.
//  RefundStatus     – refund lifecycle mirrored from the refund
//                     transaction (NOT_APPLICABLE when none exists).
//  RefundAmount     – amount refunded on cancellation.
//  RefundPercentage – tier percentage applied on cancellation.
//  CancellationReason – free-text reason supplied by the caller.
//  BookedAt         – when the booking was committed.
//  CancelledAt      – when the ticket was cancelled, if ever.
type Ticket struct {
	ID                 string     // tickets.id
	ShowID             uint64     // tickets.show_id
	HolderID           string     // tickets.holder_id
	SeatNos            []string   // ticket_seats.seat_no (one row per seat)
	TotalAmount        int        // tickets.total_amount
	Status             string     // tickets.status
	RefundStatus       string     // tickets.refund_status
	RefundAmount       int        // tickets.refund_amount
	RefundPercentage   float64    // tickets.refund_percentage
	CancellationReason string     // tickets.cancellation_reason
	BookedAt           time.Time  // tickets.booked_at
	CancelledAt        *time.Time // tickets.cancelled_at (nullable)
}
