package organization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/agendahub/pkg/pg"
)

// PGStore is the Postgres-backed organization store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates an organization store on the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("organization: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

const orgColumns = `id, name, slug, plan_id, is_plan_active, plan_expires_at,
	payment_id, enabled, version, created_at, updated_at`

func scanOrganization(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(
		&o.ID, &o.Name, &o.Slug, &o.PlanID, &o.IsPlanActive, &o.PlanExpiresAt,
		&o.PaymentID, &o.Enabled, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return &o, nil
}

// ByID returns the organization with the given id.
func (s *PGStore) ByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	return scanOrganization(row)
}

// ByPaymentID returns the organization whose most recent payment attempt has
// the given gateway id.
func (s *PGStore) ByPaymentID(ctx context.Context, paymentID string) (*Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE payment_id = $1`, paymentID)
	return scanOrganization(row)
}

// Update writes the organization back, guarded by its version. On success the
// in-memory Version and UpdatedAt are advanced to match the row.
func (s *PGStore) Update(ctx context.Context, org *Organization) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE organizations
		SET name = $2, slug = $3, plan_id = $4, is_plan_active = $5,
		    plan_expires_at = $6, payment_id = $7, enabled = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $1 AND version = $10`,
		org.ID, org.Name, org.Slug, org.PlanID, org.IsPlanActive,
		org.PlanExpiresAt, org.PaymentID, org.Enabled, now, org.Version)
	if err != nil {
		return fmt.Errorf("update organization %s: %w", org.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row vanished or someone else won the version race.
		if _, lookupErr := s.ByID(ctx, org.ID); lookupErr != nil {
			return lookupErr
		}
		return ErrStaleOrganization
	}

	org.Version++
	org.UpdatedAt = now
	return nil
}

// ExpiringBefore returns enabled organizations with an active plan expiring
// before the deadline, soonest first.
func (s *PGStore) ExpiringBefore(ctx context.Context, deadline time.Time) ([]*Organization, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orgColumns+`
		FROM organizations
		WHERE enabled AND is_plan_active AND plan_expires_at < $1
		ORDER BY plan_expires_at ASC`, deadline)
	if err != nil {
		return nil, fmt.Errorf("query expiring organizations: %w", err)
	}
	defer rows.Close()

	var out []*Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return out, nil
}
