package model

import "time"

// Refund statuses.  NOT_APPLICABLE lives only on tickets whose
// cancellation fell in the zero-refund tier; a RefundTransaction is
// never created for those.
const (
	RefundNotApplicable = "NOT_APPLICABLE"
	RefundPending       = "PENDING"
	RefundProcessing    = "PROCESSING"
	RefundCompleted     = "COMPLETED"
	RefundFailed        = "FAILED"
)

// RefundTransaction tracks the refund lifecycle for a cancelled
// ticket.  Processing is simulated synchronously: the record
// advances PENDING → PROCESSING → COMPLETED, or lands in FAILED
// with a reason when a step cannot be persisted.  The terminal
// status is mirrored onto the owning ticket.
//
// Fields:
//  ID                  – UUID of the transaction.
//  TicketID            – ticket being refunded.
//  OriginalAmount      – amount originally paid.
//  RefundAmount        – amount to be returned.
//  RefundPercentage    – tier percentage that was applied.
//  CancellationCharges – OriginalAmount − RefundAmount.
//  Status              – PENDING, PROCESSING, COMPLETED or FAILED.
//  Method              – refund channel (always the original payment
//                        method in this implementation).
//  FailureReason       – populated when Status is FAILED.
//  InitiatedAt         – when the transaction was created.
//  CompletedAt         – when processing finished successfully.
//  FailedAt            – when processing failed.
type RefundTransaction struct {
	ID                  string     // refund_transactions.id
	TicketID            string     // refund_transactions.ticket_id
	OriginalAmount      int        // refund_transactions.original_amount
	RefundAmount        int        // refund_transactions.refund_amount
	RefundPercentage    float64    // refund_transactions.refund_percentage
	CancellationCharges int        // refund_transactions.cancellation_charges
	Status              string     // refund_transactions.status
	Method              string     // refund_transactions.method
	FailureReason       string     // refund_transactions.failure_reason
	InitiatedAt         time.Time  // refund_transactions.initiated_at
	CompletedAt         *time.Time // refund_transactions.completed_at (nullable)
	FailedAt            *time.Time // refund_transactions.failed_at (nullable)
}
