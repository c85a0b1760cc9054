// Package ratelimit throttles requests per client key. The in-memory store
// keeps a token bucket per key; the Redis store shares a fixed-window counter
// between API replicas.
package ratelimit

import (
	"context"
	"time"
)

type Limiter interface {
	// Allow reports whether one more request for key may proceed.
	Allow(ctx context.Context, key string) (bool, error)

	// RetryAfter is how long a denied client should wait before trying again.
	RetryAfter() time.Duration
}
