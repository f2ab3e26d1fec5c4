package redis

import "errors"

var (
	// ErrFailedToParseConnString is returned when the redis URL is malformed.
	ErrFailedToParseConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady is returned when the server cannot be reached after all retry attempts.
	ErrRedisNotReady = errors.New("redis server is not ready")

	// ErrHealthcheckFailed is returned by the healthcheck closure when ping fails.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
