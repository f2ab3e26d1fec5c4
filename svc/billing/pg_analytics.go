package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGAnalyticsStore answers the reporting aggregates straight from Postgres.
type PGAnalyticsStore struct {
	pool *pgxpool.Pool
}

// NewPGAnalyticsStore creates an analytics store on the given pool.
func NewPGAnalyticsStore(pool *pgxpool.Pool) *PGAnalyticsStore {
	if pool == nil {
		panic("billing: pgxpool is required")
	}
	return &PGAnalyticsStore{pool: pool}
}

func (s *PGAnalyticsStore) CountOrganizations(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM organizations WHERE enabled`)
}

func (s *PGAnalyticsStore) CountActiveOrganizations(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM organizations WHERE enabled AND is_plan_active`)
}

func (s *PGAnalyticsStore) CountExpiringBefore(ctx context.Context, deadline time.Time) (int64, error) {
	return s.count(ctx, `
		SELECT COUNT(*) FROM organizations
		WHERE enabled AND is_plan_active AND plan_expires_at < $1`, deadline)
}

func (s *PGAnalyticsStore) CountRenewedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, `
		SELECT COUNT(*) FROM subscriptions
		WHERE is_renewal AND status = 'active' AND updated_at >= $1`, since)
}

func (s *PGAnalyticsStore) CountCancelledSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, `
		SELECT COUNT(*) FROM subscriptions
		WHERE status = 'cancelled' AND updated_at >= $1`, since)
}

func (s *PGAnalyticsStore) PlanIDsCreatedBetween(ctx context.Context, from, to time.Time) ([]string, error) {
	return s.planIDs(ctx, `
		SELECT plan_id FROM subscriptions
		WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (s *PGAnalyticsStore) ActivePlanIDs(ctx context.Context) ([]string, error) {
	return s.planIDs(ctx, `
		SELECT plan_id FROM organizations
		WHERE enabled AND is_plan_active AND plan_id <> ''`)
}

func (s *PGAnalyticsStore) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics count: %w", err)
	}
	return n, nil
}

func (s *PGAnalyticsStore) planIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics plan ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("analytics scan plan id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics iterate plan ids: %w", err)
	}
	return out, nil
}
