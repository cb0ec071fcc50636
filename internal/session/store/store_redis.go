package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"zonegate/pkg/platform/sentinel"
)

const sessionKeyPrefix = "websession:"

// RedisStore is the production web session store for distributed deployments
// where multiple instances resolve the same cookies. Records are JSON-encoded
// with a TTL matching their expiry, so Redis evicts what the store would
// report as expired anyway.
type RedisStore struct {
	client *redis.Client
	clock  func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock sets the clock function for testability.
func WithRedisClock(clock func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewRedis constructs a Redis-backed web session store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Current(ctx context.Context, sessionID string) (*WebSession, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get web session: %w", err)
	}

	var session WebSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode web session: %w", err)
	}
	if session.Expired(s.clock()) {
		return nil, sentinel.ErrExpired
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *WebSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode web session: %w", err)
	}

	ttl := time.Duration(0)
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.clock())
		if ttl <= 0 {
			return sentinel.ErrExpired
		}
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save web session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	deleted, err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return fmt.Errorf("delete web session: %w", err)
	}
	if deleted == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
