package organization

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests. It enforces the same version
// discipline as the Postgres store.
type MemoryStore struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]Organization
}

// NewMemoryStore creates an in-memory store seeded with the given organizations.
func NewMemoryStore(orgs ...*Organization) *MemoryStore {
	s := &MemoryStore{orgs: make(map[uuid.UUID]Organization, len(orgs))}
	for _, o := range orgs {
		s.orgs[o.ID] = *o
	}
	return s
}

// Put inserts or replaces an organization unconditionally. Test setup only.
func (s *MemoryStore) Put(org *Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.ID] = *org
}

// Snapshot returns a copy of every stored organization, in no particular order.
func (s *MemoryStore) Snapshot() []*Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		cp := o
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) ByID(_ context.Context, id uuid.UUID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	return &o, nil
}

func (s *MemoryStore) ByPaymentID(_ context.Context, paymentID string) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orgs {
		if o.PaymentID == paymentID {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrOrganizationNotFound
}

func (s *MemoryStore) Update(_ context.Context, org *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orgs[org.ID]
	if !ok {
		return ErrOrganizationNotFound
	}
	if current.Version != org.Version {
		return ErrStaleOrganization
	}

	org.Version++
	org.UpdatedAt = time.Now().UTC()
	s.orgs[org.ID] = *org
	return nil
}

func (s *MemoryStore) ExpiringBefore(_ context.Context, deadline time.Time) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Organization
	for _, o := range s.orgs {
		if o.Enabled && o.IsPlanActive && o.ExpiresWithin(deadline) {
			cp := o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlanExpiresAt.Before(*out[j].PlanExpiresAt)
	})
	return out, nil
}
