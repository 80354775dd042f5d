package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"localch-scraper/internal/models"
)

// DefaultPrefix namespaces run status keys.
const DefaultPrefix = "localch:run:"

// RedisStatusStore stores run status in Redis.
type RedisStatusStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	closer func() error
}

// NewRedisStatusStore initializes a Redis-backed StatusStore.
func NewRedisStatusStore(addr, prefix string, ttl time.Duration) *RedisStatusStore {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStatusStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		closer: client.Close,
	}
}

// NewRedisStatusStoreWithClient wraps an existing client; Close is then a no-op.
func NewRedisStatusStoreWithClient(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{client: client, prefix: prefix, ttl: ttl}
}

// Ping checks connectivity.
func (s *RedisStatusStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStatusStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// SetStatus writes the status record to Redis.
func (s *RedisStatusStore) SetStatus(ctx context.Context, status models.RunStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+status.RunID, payload, s.ttl).Err()
}

// GetStatus reads the status record from Redis.
func (s *RedisStatusStore) GetStatus(ctx context.Context, runID string) (models.RunStatus, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.RunStatus{}, false, nil
		}
		return models.RunStatus{}, false, err
	}

	var status models.RunStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return models.RunStatus{}, false, err
	}
	return status, true, nil
}
