package auth

import (
	"context"

	"github.com/agendahub/agendahub/svc/user"
)

type userContextKey struct{}

// SetUserToContext stores the authenticated user in the context for access
// further down the middleware chain.
func SetUserToContext(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// GetUserFromContext retrieves the authenticated user from the context.
// Returns nil if no user was previously stored.
func GetUserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userContextKey{}).(*user.User)
	return u
}
