package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript implements the token bucket refill-and-consume step
// atomically on the redis side, so concurrent instances sharing one bucket
// cannot race between read and write.
//
// KEYS[1] bucket hash {tokens, last_refill}
// ARGV: now_ms, requested, capacity, refill_rate, refill_interval_ms, ttl_ms
// Returns: {remaining, last_refill_ms}
var consumeScript = redis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last_refill = tonumber(redis.call('HGET', KEYS[1], 'last_refill'))

local now = tonumber(ARGV[1])
local requested = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local refill_rate = tonumber(ARGV[4])
local refill_interval = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now
end

local elapsed = now - last_refill
local max_intervals = math.floor(capacity / refill_rate) + 1
local intervals = math.floor(elapsed / refill_interval)
if intervals > max_intervals then
  intervals = max_intervals
end

if intervals > 0 then
  tokens = math.min(tokens + intervals * refill_rate, capacity)
  last_refill = now
end

tokens = tokens - requested

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill', last_refill)
redis.call('PEXPIRE', KEYS[1], ttl)

return {tokens, last_refill}
`)

// RedisStore implements Store on a shared redis instance so limits apply
// across all replicas of the service.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a redis-backed store. Keys are namespaced with
// prefix; an empty prefix defaults to "ratelimit".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (rs *RedisStore) key(key string) string {
	return rs.prefix + ":" + key
}

func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error) {
	now := time.Now()

	// Bucket state self-expires once it would be fully refilled anyway.
	ttl := config.RefillInterval * time.Duration(config.Capacity/config.RefillRate+2)

	res, err := consumeScript.Run(ctx, rs.client, []string{rs.key(key)},
		now.UnixMilli(),
		tokens,
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}

	remaining = int(res[0])
	resetAt = time.UnixMilli(res[1]).Add(config.RefillInterval)

	return remaining, resetAt, nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.key(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
