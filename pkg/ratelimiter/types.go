package ratelimiter

import "time"

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens remaining
	ResetAt   time.Time // When tokens will next be refilled
}

// Allowed reports whether the request is allowed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config defines the token bucket parameters.
type Config struct {
	Capacity       int           // Maximum tokens the bucket can hold (burst limit)
	RefillRate     int           // Tokens added per refill interval
	RefillInterval time.Duration // How often tokens are added
}
