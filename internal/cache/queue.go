// Package cache holds the Redis-backed pieces of the engine: the offline
// notification queue and request idempotency keys. Both have in-memory
// counterparts used when no Redis address is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/caravan-share/internal/domain"
)

const pendingKeyPrefix = "notify:pending:"

// RedisQueue keeps undelivered messages in one Redis list per user.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue constructs a RedisQueue.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func pendingKey(userID int64) string {
	return pendingKeyPrefix + strconv.FormatInt(userID, 10)
}

// Enqueue appends msg to its recipient's list.
func (q *RedisQueue) Enqueue(ctx context.Context, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("cache.RedisQueue.Enqueue: marshal: %w", err)
	}
	if err := q.client.RPush(ctx, pendingKey(msg.UserID), payload).Err(); err != nil {
		return fmt.Errorf("cache.RedisQueue.Enqueue: %w", err)
	}
	return nil
}

// Drain removes and returns every message queued for userID, oldest first.
// The read and the delete run in one MULTI so a concurrent Enqueue lands
// either in this batch or in the next one.
func (q *RedisQueue) Drain(ctx context.Context, userID int64) ([]domain.Message, error) {
	key := pendingKey(userID)
	var lrange *redis.StringSliceCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache.RedisQueue.Drain: %w", err)
	}

	raw := lrange.Val()
	out := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return out, fmt.Errorf("cache.RedisQueue.Drain: unmarshal: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Pending returns the number of queued messages for userID.
func (q *RedisQueue) Pending(ctx context.Context, userID int64) (int64, error) {
	n, err := q.client.LLen(ctx, pendingKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("cache.RedisQueue.Pending: %w", err)
	}
	return n, nil
}
