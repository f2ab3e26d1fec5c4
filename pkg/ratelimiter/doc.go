// Package ratelimiter implements a token bucket rate limiter with pluggable
// storage and HTTP middleware. The payment webhook endpoint uses the
// redis-backed store so the limit holds across service replicas.
package ratelimiter
