package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

// RefundRepo persists refund transactions.  Implements
// engine.RefundStore.
type RefundRepo struct {
	db *sql.DB
}

// NewRefundRepo returns a RefundRepo bound to the provided database.
func NewRefundRepo(db *sql.DB) *RefundRepo { return &RefundRepo{db: db} }

// CreateRefund inserts a new refund transaction.
func (r *RefundRepo) CreateRefund(ctx context.Context, t *model.RefundTransaction) error {
	const q = `INSERT INTO refund_transactions
	           (id, ticket_id, original_amount, refund_amount, refund_percentage,
	            cancellation_charges, status, method, initiated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.TicketID, t.OriginalAmount, t.RefundAmount, t.RefundPercentage,
		t.CancellationCharges, t.Status, t.Method, t.InitiatedAt.UTC(),
	)
	return err
}

// UpdateRefund rewrites the lifecycle fields of a transaction.
func (r *RefundRepo) UpdateRefund(ctx context.Context, t *model.RefundTransaction) error {
	const q = `UPDATE refund_transactions
	           SET status = ?, failure_reason = ?, completed_at = ?, failed_at = ?
	           WHERE id = ?`
	var completedAt, failedAt interface{}
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.UTC()
	}
	if t.FailedAt != nil {
		failedAt = t.FailedAt.UTC()
	}
	res, err := r.db.ExecContext(ctx, q, t.Status, t.FailureReason, completedAt, failedAt, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.ErrRefundNotFound
	}
	return nil
}

// RefundByTicketID fetches the transaction for a ticket.  Returns
// engine.ErrRefundNotFound when none exists (zero-refund
// cancellations never create one).
func (r *RefundRepo) RefundByTicketID(ctx context.Context, ticketID string) (*model.RefundTransaction, error) {
	const q = `SELECT id, ticket_id, original_amount, refund_amount, refund_percentage,
	                  cancellation_charges, status, method, failure_reason,
	                  initiated_at, completed_at, failed_at
	           FROM refund_transactions WHERE ticket_id = ?`
	var (
		t           model.RefundTransaction
		reason      sql.NullString
		completedAt sql.NullTime
		failedAt    sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, ticketID).Scan(
		&t.ID, &t.TicketID, &t.OriginalAmount, &t.RefundAmount, &t.RefundPercentage,
		&t.CancellationCharges, &t.Status, &t.Method, &reason,
		&t.InitiatedAt, &completedAt, &failedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrRefundNotFound
	}
	if err != nil {
		return nil, err
	}
	t.FailureReason = reason.String
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	if failedAt.Valid {
		at := failedAt.Time
		t.FailedAt = &at
	}
	return &t, nil
}
