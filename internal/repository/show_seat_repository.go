package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinebook/seat-reservation/internal/model"
)

// ShowSeatRepo encapsulates database operations for show_seats.  It
// implements engine.SeatStore.
type ShowSeatRepo struct {
	db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo { return &ShowSeatRepo{db: db} }

// SeatsByShow returns every seat of the show in seat-map order.
func (r *ShowSeatRepo) SeatsByShow(ctx context.Context, showID uint64) ([]*model.ShowSeat, error) {
	const q = `SELECT id, show_id, seat_no, seat_type, price, status, created_at, updated_at
	           FROM show_seats WHERE show_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []*model.ShowSeat
	for rows.Next() {
		var s model.ShowSeat
		if err := rows.Scan(&s.ID, &s.ShowID, &s.SeatNo, &s.SeatType, &s.Price, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, &s)
	}
	return seats, rows.Err()
}

// CreateSeats inserts the seat map in one statement.  Timestamps
// default in the DB.  An empty slice is a no-op.
func (r *ShowSeatRepo) CreateSeats(ctx context.Context, seats []*model.ShowSeat) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO show_seats (show_id, seat_no, seat_type, price, status) VALUES `)
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, s.ShowID, s.SeatNo, s.SeatType, s.Price, s.Status)
	}
	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}

// UpdateSeatStatus sets the status of the listed seats for a show.
func (r *ShowSeatRepo) UpdateSeatStatus(ctx context.Context, showID uint64, seatNos []string, status string) error {
	if len(seatNos) == 0 {
		return nil
	}
	q := `UPDATE show_seats SET status = ? WHERE show_id = ? AND seat_no IN (` + placeholders(len(seatNos)) + `)`
	args := make([]interface{}, 0, len(seatNos)+2)
	args = append(args, status, showID)
	for _, no := range seatNos {
		args = append(args, no)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// UpdateSeatPrices rewrites prices keyed by seat number.  Each seat
// is updated individually; dynamic repricing is a background-ish
// side effect so per-row statements are acceptable here.
func (r *ShowSeatRepo) UpdateSeatPrices(ctx context.Context, showID uint64, prices map[string]int) error {
	if len(prices) == 0 {
		return nil
	}
	const q = `UPDATE show_seats SET price = ? WHERE show_id = ? AND seat_no = ?`
	for no, price := range prices {
		if _, err := r.db.ExecContext(ctx, q, price, showID, no); err != nil {
			return err
		}
	}
	return nil
}

// placeholders renders n comma-separated "?" marks for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
