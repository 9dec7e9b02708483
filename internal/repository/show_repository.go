// Package repository implements the engine store interfaces on
// MySQL via database/sql.  The engines serialize per show before
// calling in, so these methods are plain reads and writes; they do
// not take row locks of their own.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/model"
)

// ShowRepo provides read access to the shows table.  Show rows are
// created and maintained by the catalog service; the engine only
// resolves them by id.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo returns a ShowRepo bound to the provided database.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// ShowByID fetches a single show.  Returns engine.ErrShowNotFound
// when the id does not exist.
func (r *ShowRepo) ShowByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, title, starts_at, ends_at, status, created_at, updated_at
	           FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Title, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
