package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

// TicketRepo persists tickets and their owned seat numbers.  The
// ticket_seats rows are what make cancellation release exactly the
// right seats.  Implements engine.TicketStore.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTicket inserts the ticket and its seat rows in one
// transaction so a ticket can never exist without its seat set.
func (r *TicketRepo) CreateTicket(ctx context.Context, t *model.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO tickets
	             (id, show_id, holder_id, total_amount, status, refund_status, booked_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		t.ID, t.ShowID, t.HolderID, t.TotalAmount, t.Status, t.RefundStatus, t.BookedAt.UTC(),
	); err != nil {
		return err
	}

	if len(t.SeatNos) > 0 {
		var b strings.Builder
		b.WriteString(`INSERT INTO ticket_seats (ticket_id, seat_no) VALUES `)
		args := make([]interface{}, 0, len(t.SeatNos)*2)
		for i, no := range t.SeatNos {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("(?, ?)")
			args = append(args, t.ID, no)
		}
		if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// TicketByID fetches a ticket with its seat numbers.  Returns
// engine.ErrTicketNotFound for unknown ids.
func (r *TicketRepo) TicketByID(ctx context.Context, id string) (*model.Ticket, error) {
	const q = `SELECT id, show_id, holder_id, total_amount, status, refund_status,
	                  refund_amount, refund_percentage, cancellation_reason,
	                  booked_at, cancelled_at
	           FROM tickets WHERE id = ?`
	var (
		t           model.Ticket
		reason      sql.NullString
		cancelledAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.ShowID, &t.HolderID, &t.TotalAmount, &t.Status, &t.RefundStatus,
		&t.RefundAmount, &t.RefundPercentage, &reason, &t.BookedAt, &cancelledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CancellationReason = reason.String
	if cancelledAt.Valid {
		at := cancelledAt.Time
		t.CancelledAt = &at
	}

	rows, err := r.db.QueryContext(ctx, `SELECT seat_no FROM ticket_seats WHERE ticket_id = ? ORDER BY seat_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var no string
		if err := rows.Scan(&no); err != nil {
			return nil, err
		}
		t.SeatNos = append(t.SeatNos, no)
	}
	return &t, rows.Err()
}

// UpdateTicket rewrites the mutable ticket fields (status, refund
// fields, cancellation data).  The seat set never changes after
// creation.
func (r *TicketRepo) UpdateTicket(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets
	           SET status = ?, refund_status = ?, refund_amount = ?, refund_percentage = ?,
	               cancellation_reason = ?, cancelled_at = ?
	           WHERE id = ?`
	var cancelledAt interface{}
	if t.CancelledAt != nil {
		cancelledAt = t.CancelledAt.UTC()
	}
	res, err := r.db.ExecContext(ctx, q,
		t.Status, t.RefundStatus, t.RefundAmount, t.RefundPercentage,
		t.CancellationReason, cancelledAt, t.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.ErrTicketNotFound
	}
	return nil
}
