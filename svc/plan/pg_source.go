package plan

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource loads the plan catalog from the plans table.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource creates a Postgres-backed plan source.
func NewPGSource(pool *pgxpool.Pool) *PGSource {
	if pool == nil {
		panic("plan: pgxpool is required")
	}
	return &PGSource{pool: pool}
}

// Load reads every plan row. Hidden plans are included; visibility is a
// presentation concern handled by callers via Plan.Public.
func (s *PGSource) Load(ctx context.Context) (map[string]Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, price_amount, price_currency,
		       billing_interval, features, public, created_at, updated_at
		FROM plans`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := make(map[string]Plan)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description,
			&p.Price.Amount, &p.Price.Currency,
			&p.Interval, &p.Features, &p.Public,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}
