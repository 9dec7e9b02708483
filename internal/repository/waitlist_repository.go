package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

// WaitlistRepo persists waitlist entries.  PendingByShow orders by
// created_at then id, which is what makes the queue FIFO.
// Implements engine.WaitlistStore.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo returns a WaitlistRepo bound to the provided database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// CreateEntry inserts a new entry and backfills its generated id.
func (r *WaitlistRepo) CreateEntry(ctx context.Context, e *model.WaitlistEntry) error {
	const q = `INSERT INTO waitlist_entries
	           (show_id, holder_id, seat_type, seat_count, status, created_at, expires_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.ShowID, e.HolderID, e.SeatType, e.Count, e.Status, e.CreatedAt.UTC(), e.ExpiresAt.UTC(),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// UpdateEntry rewrites the mutable fields of an entry.
func (r *WaitlistRepo) UpdateEntry(ctx context.Context, e *model.WaitlistEntry) error {
	const q = `UPDATE waitlist_entries
	           SET status = ?, message = ?, notified_at = ?
	           WHERE id = ?`
	var notifiedAt interface{}
	if e.NotifiedAt != nil {
		notifiedAt = e.NotifiedAt.UTC()
	}
	res, err := r.db.ExecContext(ctx, q, e.Status, e.Message, notifiedAt, e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.ErrWaitlistNotFound
	}
	return nil
}

// EntryByID fetches a single entry.  Returns
// engine.ErrWaitlistNotFound for unknown ids.
func (r *WaitlistRepo) EntryByID(ctx context.Context, id uint64) (*model.WaitlistEntry, error) {
	const q = `SELECT id, show_id, holder_id, seat_type, seat_count, status, message,
	                  created_at, notified_at, expires_at
	           FROM waitlist_entries WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrWaitlistNotFound
	}
	return e, err
}

// PendingByShow lists the show's PENDING entries oldest first.
func (r *WaitlistRepo) PendingByShow(ctx context.Context, showID uint64) ([]*model.WaitlistEntry, error) {
	const q = `SELECT id, show_id, holder_id, seat_type, seat_count, status, message,
	                  created_at, notified_at, expires_at
	           FROM waitlist_entries
	           WHERE show_id = ? AND status = ?
	           ORDER BY created_at ASC, id ASC`
	return r.queryEntries(ctx, q, showID, model.WaitlistPending)
}

// PendingByHolder lists the holder's PENDING entries oldest first.
func (r *WaitlistRepo) PendingByHolder(ctx context.Context, holderID string) ([]*model.WaitlistEntry, error) {
	const q = `SELECT id, show_id, holder_id, seat_type, seat_count, status, message,
	                  created_at, notified_at, expires_at
	           FROM waitlist_entries
	           WHERE holder_id = ? AND status = ?
	           ORDER BY created_at ASC, id ASC`
	return r.queryEntries(ctx, q, holderID, model.WaitlistPending)
}

// ExpirePendingBefore marks stale PENDING entries EXPIRED and
// reports how many rows changed.
func (r *WaitlistRepo) ExpirePendingBefore(ctx context.Context, now time.Time) (int, error) {
	const q = `UPDATE waitlist_entries SET status = ? WHERE status = ? AND expires_at < ?`
	res, err := r.db.ExecContext(ctx, q, model.WaitlistExpired, model.WaitlistPending, now.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *WaitlistRepo) queryEntries(ctx context.Context, q string, args ...interface{}) ([]*model.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*model.WaitlistEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.WaitlistEntry, error) {
	var (
		e          model.WaitlistEntry
		message    sql.NullString
		notifiedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.ShowID, &e.HolderID, &e.SeatType, &e.Count, &e.Status,
		&message, &e.CreatedAt, &notifiedAt, &e.ExpiresAt)
	if err != nil {
		return nil, err
	}
	e.Message = message.String
	if notifiedAt.Valid {
		at := notifiedAt.Time
		e.NotifiedAt = &at
	}
	return &e, nil
}
