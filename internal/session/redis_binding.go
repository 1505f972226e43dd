package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisBindingStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBindingStore creates a Redis-backed binding store.
func NewRedisBindingStore(client *redis.Client) *RedisBindingStore {
	return &RedisBindingStore{
		client: client,
		prefix: "binding:",
	}
}

func (r *RedisBindingStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisBindingStore) Create(ctx context.Context, b Binding) error {
	if b.SessionID == "" || b.Provider == "" || b.Subject == "" {
		return fmt.Errorf("session: binding missing session_id, provider or subject")
	}

	ttl := time.Until(b.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("session: failed to marshal binding: %w", err)
	}

	return r.client.Set(ctx, r.key(b.SessionID), data, ttl).Err()
}

func (r *RedisBindingStore) Get(ctx context.Context, sessionID string) (*Binding, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var b Binding
	if err := json.Unmarshal([]byte(val), &b); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal binding: %w", err)
	}

	return &b, nil
}

func (r *RedisBindingStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
