package organization

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant account. Each organization carries its own
// subscription state; there is no separate subscription entity for the
// current plan, only the ledger of payment attempts.
type Organization struct {
	ID            uuid.UUID
	Name          string
	Slug          string
	PlanID        string
	IsPlanActive  bool
	PlanExpiresAt *time.Time // set whenever IsPlanActive is true
	PaymentID     string     // gateway id of the most recent payment attempt
	Enabled       bool
	Version       int64 // optimistic concurrency token, bumped on every update
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasActivePlan reports whether the organization's plan is active at the
// given time. An active flag with an elapsed expiry still counts as active;
// deactivation is the renewal scanner's job, not a read-side computation.
func (o *Organization) HasActivePlan() bool {
	return o.IsPlanActive
}

// ExpiresWithin reports whether the plan expiry falls before the deadline.
// Organizations without an expiry never match.
func (o *Organization) ExpiresWithin(deadline time.Time) bool {
	if o.PlanExpiresAt == nil {
		return false
	}
	return o.PlanExpiresAt.Before(deadline)
}
