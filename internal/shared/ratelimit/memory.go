package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryStore keeps a token bucket per key with periodic eviction of idle keys.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]*storeEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type storeEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type MemoryOption func(*MemoryStore)

func WithIdleTTL(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func NewMemoryStore(rps float64, burst int, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:      make(map[string]*storeEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	ent, ok := s.entries[key]
	if !ok {
		ent = &storeEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	return ent.lim.AllowN(now, 1), nil
}

// RetryAfter is the time the bucket takes to refill one token.
func (s *MemoryStore) RetryAfter() time.Duration {
	if s.rps <= 0 || s.rps == rate.Inf {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(s.rps))
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor evicts idle keys until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
