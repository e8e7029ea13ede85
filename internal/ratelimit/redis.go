package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithExpiry increments the counter and attaches the window expiry
// only on the increment that created the key. Running it server-side
// keeps the increment and its conditional expiry atomic under concurrent
// requests; two racing callers can never both observe "just created".
var incrWithExpiry = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current`)

// RedisStore is the production counter backend, shared by all gateway
// processes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore backed by the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr runs the atomic increment-and-conditionally-expire script.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrWithExpiry.Run(ctx, s.client, []string{key}, int(ttl.Seconds())).Int64()
}
