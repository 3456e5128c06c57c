package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore keeps one cart payload per key. With a ttl the expiry slides: every
// read or write pushes it forward, so only carts idle for the whole ttl vanish.
type KVStore struct {
	client *Client
	ttl    time.Duration
}

func NewKVStore(client *Client, ttl time.Duration) *KVStore {
	return &KVStore{client: client, ttl: ttl}
}

// Load reports found=false for a missing or expired key.
func (s *KVStore) Load(ctx context.Context, key string) (string, bool, error) {
	if s.client == nil || s.client.store == nil {
		return "", false, errNoConnection
	}
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.store.GetEx(ctx, key, s.ttl)
	} else {
		cmd = s.client.store.Get(ctx, key)
	}
	value, err := cmd.Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return value, true, nil
}

func (s *KVStore) Save(ctx context.Context, key, payload string) error {
	if s.client == nil || s.client.store == nil {
		return errNoConnection
	}
	return s.client.store.Set(ctx, key, payload, s.ttl).Err()
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return errNoConnection
	}
	return s.client.Del(ctx, key)
}
