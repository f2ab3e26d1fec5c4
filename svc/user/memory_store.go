package user

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryStore creates an in-memory store seeded with the given users.
func NewMemoryStore(users ...*User) *MemoryStore {
	s := &MemoryStore{users: make(map[uuid.UUID]User, len(users))}
	for _, u := range users {
		s.users[u.ID] = *u
	}
	return s
}

func (s *MemoryStore) ByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryStore) ByAPIToken(_ context.Context, token string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if token == "" {
		return nil, ErrUserNotFound
	}
	for _, u := range s.users {
		if u.APIToken == token {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) FirstInOrganization(_ context.Context, orgID uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.inOrganization(orgID, func(User) bool { return true })
	if len(members) == 0 {
		return nil, ErrUserNotFound
	}
	return members[0], nil
}

func (s *MemoryStore) AdminsInOrganization(_ context.Context, orgID uuid.UUID) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.inOrganization(orgID, func(u User) bool {
		return u.Role == RoleAdmin || u.Role == RoleSuperadmin
	}), nil
}

func (s *MemoryStore) inOrganization(orgID uuid.UUID, match func(User) bool) []*User {
	var out []*User
	for _, u := range s.users {
		if u.OrganizationID == orgID && match(u) {
			cp := u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
