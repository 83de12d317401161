package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/angelmondragon/storefront/pkg/redis"
)

// KV is the slice of the redis client the session store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps the session under a single redis key, letting several
// terminals share one login.
type RedisStore struct {
	kv  KV
	key string
	ttl time.Duration
}

func NewRedisStore(kv KV, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, key: key, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context) (Session, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, redisclient.ErrNotFound) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, string(raw), r.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.kv.Del(ctx, r.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
