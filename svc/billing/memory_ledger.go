package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedgerStore is an in-memory LedgerStore for tests.
type MemoryLedgerStore struct {
	mu   sync.RWMutex
	subs []Subscription
}

// NewMemoryLedgerStore creates an empty in-memory ledger.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{}
}

func (s *MemoryLedgerStore) Create(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *MemoryLedgerStore) UpdateStatusByPaymentID(_ context.Context, paymentID string, status SubscriptionStatus, cancelReason string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := false
	for i := range s.subs {
		if s.subs[i].PaymentID == paymentID && s.subs[i].Status == StatusPending {
			s.subs[i].Status = status
			s.subs[i].CancelReason = cancelReason
			if expiresAt != nil {
				cp := *expiresAt
				s.subs[i].ExpiresAt = &cp
			}
			s.subs[i].UpdatedAt = time.Now().UTC()
			updated = true
		}
	}
	if !updated {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *MemoryLedgerStore) History(_ context.Context, orgID uuid.UUID) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Subscription
	for i := range s.subs {
		if s.subs[i].OrganizationID == orgID {
			cp := s.subs[i]
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// All returns a snapshot of every ledger row. Test helper.
func (s *MemoryLedgerStore) All() []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Subscription(nil), s.subs...)
}
