package ratelimiter

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
type Store interface {
	// ConsumeTokens attempts to consume the given number of tokens for key.
	// A negative remaining count means the request should be denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the rate limit state for key.
	Reset(ctx context.Context, key string) error
}
