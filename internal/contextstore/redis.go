package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stayfinder/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists search contexts in Redis so multiple instances can
// share conversations.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func contextKey(conversationID string) string {
	return "ctx:" + conversationID
}

// Load fetches the stored context, or nil when the key is absent.
func (s *RedisStore) Load(ctx context.Context, conversationID string) (*model.SearchContext, error) {
	data, err := s.client.Get(ctx, contextKey(conversationID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	var sc model.SearchContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}
	return &sc, nil
}

// Save writes the context with a refreshed TTL.
func (s *RedisStore) Save(ctx context.Context, conversationID string, sc *model.SearchContext) error {
	if sc == nil {
		return nil
	}
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}
	if err := s.client.Set(ctx, contextKey(conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

// Delete removes the conversation's context.
func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, contextKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
