package organization

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrOrganizationNotFound is returned when no organization matches the lookup.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrStaleOrganization is returned when an update loses an optimistic
	// concurrency race. Callers should re-read and retry or give up.
	ErrStaleOrganization = errors.New("organization was modified concurrently")
)

// Store persists organizations.
//
// Update uses the Version field for optimistic locking: the write succeeds
// only when the stored version still matches org.Version, and bumps it by
// one. Concurrent webhook and renewal writers detect each other this way
// without holding row locks across gateway calls.
type Store interface {
	ByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	ByPaymentID(ctx context.Context, paymentID string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	// ExpiringBefore returns enabled organizations with an active plan whose
	// expiry falls before the deadline, ordered by expiry ascending.
	ExpiringBefore(ctx context.Context, deadline time.Time) ([]*Organization, error)
}
