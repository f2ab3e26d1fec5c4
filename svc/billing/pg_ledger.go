package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGLedgerStore is the Postgres-backed subscription ledger.
type PGLedgerStore struct {
	pool *pgxpool.Pool
}

// NewPGLedgerStore creates a ledger store on the given pool.
func NewPGLedgerStore(pool *pgxpool.Pool) *PGLedgerStore {
	if pool == nil {
		panic("billing: pgxpool is required")
	}
	return &PGLedgerStore{pool: pool}
}

func (s *PGLedgerStore) Create(ctx context.Context, sub *Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, organization_id, plan_id, status, expires_at,
			payment_id, is_renewal, cancel_reason, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.OrganizationID, sub.PlanID, sub.Status, sub.ExpiresAt,
		sub.PaymentID, sub.IsRenewal, sub.CancelReason, sub.PaymentMethod,
		sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (s *PGLedgerStore) UpdateStatusByPaymentID(ctx context.Context, paymentID string, status SubscriptionStatus, cancelReason string, expiresAt *time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = $2, cancel_reason = NULLIF($3, ''),
		    expires_at = COALESCE($4, expires_at), updated_at = $5
		WHERE payment_id = $1 AND status = 'pending'`,
		paymentID, status, cancelReason, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *PGLedgerStore) History(ctx context.Context, orgID uuid.UUID) ([]*Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, organization_id, plan_id, status, expires_at, payment_id,
		       is_renewal, COALESCE(cancel_reason, ''), COALESCE(payment_method, ''),
		       created_at, updated_at
		FROM subscriptions
		WHERE organization_id = $1
		ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("query subscription history: %w", err)
	}
	defer rows.Close()

	var out []*Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(
			&sub.ID, &sub.OrganizationID, &sub.PlanID, &sub.Status, &sub.ExpiresAt,
			&sub.PaymentID, &sub.IsRenewal, &sub.CancelReason, &sub.PaymentMethod,
			&sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return out, nil
}
