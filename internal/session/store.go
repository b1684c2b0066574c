package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RefreshTokenKey builds the store key tracking a user's current refresh token.
func RefreshTokenKey(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}

// Store is a key-value store with per-key expiry. Implementations fail open:
// when the backing store is unreachable, reads report absent and writes
// no-op instead of returning errors. Callers on refresh-sensitive paths must
// treat absent as denied, never as valid.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration)
	Get(ctx context.Context, key string) (string, bool)
	Delete(ctx context.Context, key string)
	Exists(ctx context.Context, key string) bool
}

type redisStore struct {
	client  *redis.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewRedisStore wraps a go-redis client as a Store. Each operation runs a
// single attempt under the given timeout; there is no retry loop.
func NewRedisStore(client *redis.Client, logger *zap.Logger, timeout time.Duration) Store {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &redisStore{client: client, logger: logger, timeout: timeout}
}

func (s *redisStore) Put(ctx context.Context, key, value string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("session store put failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("session store get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (s *redisStore) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("session store delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *redisStore) Exists(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Warn("session store exists failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}
