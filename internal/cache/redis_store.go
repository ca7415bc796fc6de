package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as JSON strings under a key prefix. Keys expire in
// Redis after retention so abandoned references do not accumulate; freshness
// is still decided by the TTLCache from FetchedAt.
type RedisStore[T any] struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore[T any](client *redis.Client, prefix string, retention time.Duration) *RedisStore[T] {
	return &RedisStore[T]{client: client, prefix: prefix, retention: retention}
}

func (s *RedisStore[T]) Get(ctx context.Context, key string) (Entry[T], bool, error) {
	var entry Entry[T]
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, err
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, false, err
	}
	return entry, true, nil
}

func (s *RedisStore[T]) Set(ctx context.Context, key string, entry Entry[T]) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, raw, s.retention).Err()
}

func (s *RedisStore[T]) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore[T]) Len(ctx context.Context) (int, error) {
	keys, err := s.keys(ctx)
	return len(keys), err
}

func (s *RedisStore[T]) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
