package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cinebook/seat-reservation/internal/model"
)

// SeatHoldRepo provides data access to the seat_holds ledger.  It
// implements engine.HoldStore.  All timestamps are UTC; expiry
// decisions belong to the engine, so this layer only filters by the
// cutoff it is handed.
type SeatHoldRepo struct {
	db *sql.DB
}

// NewSeatHoldRepo returns a SeatHoldRepo bound to the provided database.
func NewSeatHoldRepo(db *sql.DB) *SeatHoldRepo { return &SeatHoldRepo{db: db} }

// HoldsByShow returns every hold for the show, any state.
func (r *SeatHoldRepo) HoldsByShow(ctx context.Context, showID uint64) ([]*model.SeatHold, error) {
	const q = `SELECT id, show_id, seat_no, holder_id, state, created_at
	           FROM seat_holds WHERE show_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var holds []*model.SeatHold
	for rows.Next() {
		var h model.SeatHold
		if err := rows.Scan(&h.ID, &h.ShowID, &h.SeatNo, &h.HolderID, &h.State, &h.CreatedAt); err != nil {
			return nil, err
		}
		holds = append(holds, &h)
	}
	return holds, rows.Err()
}

// CreateHolds inserts holds in one statement.  An empty slice is a
// no-op.
func (r *SeatHoldRepo) CreateHolds(ctx context.Context, holds []*model.SeatHold) error {
	if len(holds) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seat_holds (show_id, seat_no, holder_id, state, created_at) VALUES `)
	args := make([]interface{}, 0, len(holds)*5)
	for i, h := range holds {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, h.ShowID, h.SeatNo, h.HolderID, h.State, h.CreatedAt.UTC())
	}
	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}

// DeleteTempHoldsByHolder removes the holder's TEMP holds on the show.
func (r *SeatHoldRepo) DeleteTempHoldsByHolder(ctx context.Context, showID uint64, holderID string) error {
	const q = `DELETE FROM seat_holds WHERE show_id = ? AND holder_id = ? AND state = ?`
	_, err := r.db.ExecContext(ctx, q, showID, holderID, model.HoldTemp)
	return err
}

// DeleteTempHoldsOnSeats removes TEMP holds on the listed seats,
// optionally sparing one holder.
func (r *SeatHoldRepo) DeleteTempHoldsOnSeats(ctx context.Context, showID uint64, seatNos []string, excludeHolder string) error {
	if len(seatNos) == 0 {
		return nil
	}
	q := `DELETE FROM seat_holds WHERE show_id = ? AND state = ? AND seat_no IN (` + placeholders(len(seatNos)) + `)`
	args := make([]interface{}, 0, len(seatNos)+3)
	args = append(args, showID, model.HoldTemp)
	for _, no := range seatNos {
		args = append(args, no)
	}
	if excludeHolder != "" {
		q += ` AND holder_id <> ?`
		args = append(args, excludeHolder)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// DeleteHoldsOnSeats removes holds of any state on the listed seats.
func (r *SeatHoldRepo) DeleteHoldsOnSeats(ctx context.Context, showID uint64, seatNos []string) error {
	if len(seatNos) == 0 {
		return nil
	}
	q := `DELETE FROM seat_holds WHERE show_id = ? AND seat_no IN (` + placeholders(len(seatNos)) + `)`
	args := make([]interface{}, 0, len(seatNos)+1)
	args = append(args, showID)
	for _, no := range seatNos {
		args = append(args, no)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// SetHoldState transitions the holder's holds on the listed seats.
func (r *SeatHoldRepo) SetHoldState(ctx context.Context, showID uint64, holderID string, seatNos []string, state string) error {
	if len(seatNos) == 0 {
		return nil
	}
	q := `UPDATE seat_holds SET state = ? WHERE show_id = ? AND holder_id = ? AND seat_no IN (` + placeholders(len(seatNos)) + `)`
	args := make([]interface{}, 0, len(seatNos)+3)
	args = append(args, state, showID, holderID)
	for _, no := range seatNos {
		args = append(args, no)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// DeleteTempHoldsBefore removes TEMP holds created at or before the
// cutoff and reports how many rows went away.
func (r *SeatHoldRepo) DeleteTempHoldsBefore(ctx context.Context, showID uint64, cutoff time.Time) (int, error) {
	const q = `DELETE FROM seat_holds WHERE show_id = ? AND state = ? AND created_at <= ?`
	res, err := r.db.ExecContext(ctx, q, showID, model.HoldTemp, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ShowIDsWithTempHolds lists shows that currently carry TEMP holds.
func (r *SeatHoldRepo) ShowIDsWithTempHolds(ctx context.Context) ([]uint64, error) {
	const q = `SELECT DISTINCT show_id FROM seat_holds WHERE state = ?`
	rows, err := r.db.QueryContext(ctx, q, model.HoldTemp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
