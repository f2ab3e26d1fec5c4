// Package auth authenticates API requests with Bearer tokens looked up
// against the user store, and exposes the authenticated user through the
// request context.
package auth
