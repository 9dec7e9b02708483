package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinebook/seat-reservation/internal/model"
)

// PricingConfigRepo reads and seeds the pricing rule set.  Rule
// editing lives in the pricing-config service; the engine only
// consults active rules and seeds defaults on an empty table.
// Implements engine.PricingStore.
type PricingConfigRepo struct {
	db *sql.DB
}

// NewPricingConfigRepo returns a PricingConfigRepo bound to the
// provided database.
func NewPricingConfigRepo(db *sql.DB) *PricingConfigRepo { return &PricingConfigRepo{db: db} }

// ActiveConfigs returns every active rule in id order, so the
// snapshot the engine evaluates is stable across reads.
func (r *PricingConfigRepo) ActiveConfigs(ctx context.Context) ([]*model.PricingConfig, error) {
	const q = `SELECT id, factor_kind, config_key, multiplier, description, is_active,
	                  min_occupancy, max_occupancy, start_hour, end_hour, created_at, updated_at
	           FROM pricing_configs WHERE is_active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var configs []*model.PricingConfig
	for rows.Next() {
		var c model.PricingConfig
		if err := rows.Scan(&c.ID, &c.FactorKind, &c.Key, &c.Multiplier, &c.Description, &c.Active,
			&c.MinOccupancy, &c.MaxOccupancy, &c.StartHour, &c.EndHour, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, &c)
	}
	return configs, rows.Err()
}

// CountConfigs reports how many rules exist, active or not.
func (r *PricingConfigRepo) CountConfigs(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pricing_configs`).Scan(&n)
	return n, err
}

// CreateConfigs inserts rules in one statement; used to seed the
// defaults on first boot.
func (r *PricingConfigRepo) CreateConfigs(ctx context.Context, configs []*model.PricingConfig) error {
	if len(configs) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO pricing_configs
	               (factor_kind, config_key, multiplier, description, is_active,
	                min_occupancy, max_occupancy, start_hour, end_hour) VALUES `)
	args := make([]interface{}, 0, len(configs)*9)
	for i, c := range configs {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, c.FactorKind, c.Key, c.Multiplier, c.Description, c.Active,
			c.MinOccupancy, c.MaxOccupancy, c.StartHour, c.EndHour)
	}
	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}
