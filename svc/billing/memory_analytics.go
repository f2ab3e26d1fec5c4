package billing

import (
	"context"
	"time"

	"github.com/agendahub/agendahub/svc/organization"
)

// MemoryAnalyticsStore derives aggregates from the in-memory stores. Tests
// and local development only.
type MemoryAnalyticsStore struct {
	orgs   *organization.MemoryStore
	ledger *MemoryLedgerStore
}

// NewMemoryAnalyticsStore creates an analytics store over the given stores.
func NewMemoryAnalyticsStore(orgs *organization.MemoryStore, ledger *MemoryLedgerStore) *MemoryAnalyticsStore {
	if orgs == nil || ledger == nil {
		panic("billing: both memory stores are required")
	}
	return &MemoryAnalyticsStore{orgs: orgs, ledger: ledger}
}

func (s *MemoryAnalyticsStore) CountOrganizations(ctx context.Context) (int64, error) {
	return s.countOrgs(ctx, func(*organization.Organization) bool { return true })
}

func (s *MemoryAnalyticsStore) CountActiveOrganizations(ctx context.Context) (int64, error) {
	return s.countOrgs(ctx, func(o *organization.Organization) bool { return o.IsPlanActive })
}

func (s *MemoryAnalyticsStore) CountExpiringBefore(ctx context.Context, deadline time.Time) (int64, error) {
	expiring, err := s.orgs.ExpiringBefore(ctx, deadline)
	if err != nil {
		return 0, err
	}
	return int64(len(expiring)), nil
}

func (s *MemoryAnalyticsStore) CountRenewedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, sub := range s.ledger.All() {
		if sub.IsRenewal && sub.Status == StatusActive && !sub.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryAnalyticsStore) CountCancelledSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, sub := range s.ledger.All() {
		if sub.Status == StatusCancelled && !sub.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryAnalyticsStore) PlanIDsCreatedBetween(_ context.Context, from, to time.Time) ([]string, error) {
	var out []string
	for _, sub := range s.ledger.All() {
		if !sub.CreatedAt.Before(from) && sub.CreatedAt.Before(to) {
			out = append(out, sub.PlanID)
		}
	}
	return out, nil
}

func (s *MemoryAnalyticsStore) ActivePlanIDs(_ context.Context) ([]string, error) {
	var out []string
	for _, o := range s.orgs.Snapshot() {
		if o.Enabled && o.IsPlanActive && o.PlanID != "" {
			out = append(out, o.PlanID)
		}
	}
	return out, nil
}

func (s *MemoryAnalyticsStore) countOrgs(_ context.Context, match func(*organization.Organization) bool) (int64, error) {
	var n int64
	for _, o := range s.orgs.Snapshot() {
		if o.Enabled && match(o) {
			n++
		}
	}
	return n, nil
}
