package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSlot keeps the snapshot as a plain Redis string.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot creates a slot bound to key. An empty key selects DefaultKey.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultKey
	}
	return &RedisSlot{client: client, key: key}
}

func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", s.key, err)
	}
	return val, nil
}

func (s *RedisSlot) Save(ctx context.Context, payload []byte) error {
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", s.key, err)
	}
	return nil
}
