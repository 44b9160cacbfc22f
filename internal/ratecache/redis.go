package ratecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash that holds one field per currency code.
const DefaultRedisKey = "fxtrend:historical"

// RedisStore keeps each currency's snapshot in its own field of a Redis
// hash. HSET replaces a single field atomically, so writes for different
// codes never overwrite each other.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore stores snapshots under the hash key on client.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load implements Store
func (r *RedisStore) Load(ctx context.Context, code string) (Snapshot, bool, error) {
	data, err := r.client.HGet(ctx, r.key, code).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis hget: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, true, nil
}

// Save implements Store
func (r *RedisStore) Save(ctx context.Context, code string, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, code, data).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}
