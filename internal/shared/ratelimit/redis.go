package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts requests per key in fixed windows. The counter key
// expires with the window, so no cleanup is needed.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

// NewRedisStore allows limit requests per key in each window.
func NewRedisStore(rdb *redis.Client, limit int, window time.Duration, opts ...RedisOption) (*RedisStore, error) {
	if limit <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %v", window)
	}

	s := &RedisStore{
		rdb:    rdb,
		prefix: "minhasfinancas:ratelimit",
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	k := s.windowKey(key)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	return incr.Val() <= s.limit, nil
}

func (s *RedisStore) windowKey(key string) string {
	bucket := s.now().UnixNano() / int64(s.window)
	return fmt.Sprintf("%s:%s:%d", s.prefix, key, bucket)
}

// RetryAfter is the time left in the current window.
func (s *RedisStore) RetryAfter() time.Duration {
	elapsed := time.Duration(s.now().UnixNano() % int64(s.window))
	return s.window - elapsed
}
