package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the state of one subscription attempt in the ledger.
type SubscriptionStatus string

const (
	StatusPending   SubscriptionStatus = "pending"
	StatusActive    SubscriptionStatus = "active"
	StatusInactive  SubscriptionStatus = "inactive"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Subscription is one row of the subscription ledger: a record of a
// purchase or renewal attempt. The organization's live fields are the
// current projection; these rows are the history and are never rewritten
// except for webhook-driven status updates matched by payment id.
type Subscription struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PlanID         string
	Status         SubscriptionStatus
	ExpiresAt      *time.Time
	PaymentID      string
	IsRenewal      bool
	CancelReason   string
	PaymentMethod  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ErrSubscriptionNotFound is returned when no ledger row matches the lookup.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// LedgerStore persists the subscription ledger.
type LedgerStore interface {
	Create(ctx context.Context, sub *Subscription) error
	// UpdateStatusByPaymentID moves every pending row with the payment id to
	// the given status and stamps UpdatedAt. CancelReason is recorded when
	// non-empty; expiresAt is recorded when non-nil, so activated rows carry
	// the plan expiry they granted.
	UpdateStatusByPaymentID(ctx context.Context, paymentID string, status SubscriptionStatus, cancelReason string, expiresAt *time.Time) error
	// History returns the organization's ledger rows, newest first.
	History(ctx context.Context, orgID uuid.UUID) ([]*Subscription, error)
}
