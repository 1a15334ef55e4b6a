package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idem:"
	// IdempotencyTTL is how long a claimed request key is remembered.
	IdempotencyTTL = 24 * time.Hour
)

// RedisIdempotency remembers request keys with SETNX.
type RedisIdempotency struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotency constructs a RedisIdempotency. A non-positive ttl
// falls back to IdempotencyTTL.
func NewRedisIdempotency(client *redis.Client, ttl time.Duration) *RedisIdempotency {
	if ttl <= 0 {
		ttl = IdempotencyTTL
	}
	return &RedisIdempotency{client: client, ttl: ttl}
}

// Claim returns true the first time key is seen within the TTL.
func (r *RedisIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache.RedisIdempotency.Claim: %w", err)
	}
	return ok, nil
}

// Release forgets key so the request can be retried.
func (r *RedisIdempotency) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache.RedisIdempotency.Release: %w", err)
	}
	return nil
}

// MemoryIdempotency is the single-process twin of RedisIdempotency.
type MemoryIdempotency struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]time.Time
}

// NewMemoryIdempotency constructs a MemoryIdempotency. now may be nil.
func NewMemoryIdempotency(ttl time.Duration, now func() time.Time) *MemoryIdempotency {
	if ttl <= 0 {
		ttl = IdempotencyTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryIdempotency{ttl: ttl, now: now, keys: make(map[string]time.Time)}
}

// Claim returns true the first time key is seen within the TTL.
// Expired keys are swept lazily on each call.
func (m *MemoryIdempotency) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.keys {
		if !now.Before(exp) {
			delete(m.keys, k)
		}
	}
	if _, seen := m.keys[key]; seen {
		return false, nil
	}
	m.keys[key] = now.Add(m.ttl)
	return true, nil
}

// Release forgets key.
func (m *MemoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.keys, key)
	m.mu.Unlock()
	return nil
}
