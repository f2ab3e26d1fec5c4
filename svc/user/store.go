package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// Store persists users.
type Store interface {
	ByID(ctx context.Context, id uuid.UUID) (*User, error)
	ByAPIToken(ctx context.Context, token string) (*User, error)
	// FirstInOrganization returns the oldest user of the organization. Used
	// as the billing contact when a renewal runs without an acting user.
	FirstInOrganization(ctx context.Context, orgID uuid.UUID) (*User, error)
	// AdminsInOrganization returns the organization's admins, oldest first.
	AdminsInOrganization(ctx context.Context, orgID uuid.UUID) ([]*User, error)
}
