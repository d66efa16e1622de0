package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
)

// DefaultRedisKey holds the history when no key is configured.
const DefaultRedisKey = "weather:history"

// RedisStore keeps the history as one JSON value under a single key; SET
// replaces it atomically.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (s *RedisStore) Load(ctx context.Context) ([]history.Entry, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return []history.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}

	var entries []history.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history from redis: %w", err)
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	p, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, p, 0).Err(); err != nil {
		return fmt.Errorf("failed to write history to redis: %w", err)
	}
	return nil
}
