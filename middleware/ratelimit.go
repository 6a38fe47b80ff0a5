package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lbliii/chirp"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// Skipper defines a function to skip the middleware.
	Skipper Skipper

	// Rate is the sustained number of requests per second per key.
	Rate int

	// Burst is the maximum burst size per key.
	Burst int

	// KeyFunc extracts the bucket key from the request. Defaults to the
	// client IP.
	KeyFunc func(c *Context) string

	// Store holds the per-key limiters. Defaults to an in-memory store.
	Store *MemoryStore
}

// DefaultRateLimitConfig returns a default rate limit configuration.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Skipper: DefaultSkipper,
		Rate:    10,
		Burst:   20,
		KeyFunc: func(c *Context) string { return c.RealIP() },
	}
}

// RateLimit returns a middleware that limits request rates per client IP
// using token buckets, short-circuiting with a 429 signal when exceeded.
func RateLimit() MiddlewareFunc {
	return RateLimitWithConfig(DefaultRateLimitConfig())
}

// RateLimitWithConfig returns a rate limit middleware with config.
func RateLimitWithConfig(config *RateLimitConfig) MiddlewareFunc {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = config.Rate * 2
	}
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultRateLimitConfig().KeyFunc
	}
	if config.Store == nil {
		config.Store = NewMemoryStore(config.Rate, config.Burst)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			if config.Skipper(c) {
				return next(c)
			}
			if !config.Store.Allow(config.KeyFunc(c)) {
				return nil, chirp.ErrTooManyRequests
			}
			return next(c)
		}
	}
}

// limiterEntry holds a token bucket and its last access time.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryStore is an in-memory, per-key token bucket store. Idle buckets are
// evicted after a TTL so clients that stop talking do not pin memory.
type MemoryStore struct {
	rate  rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	lastSeen time.Time
}

// NewMemoryStore creates a store allowing r requests per second with burst b.
func NewMemoryStore(r, b int) *MemoryStore {
	return &MemoryStore{
		rate:     rate.Limit(r),
		burst:    b,
		ttl:      10 * time.Minute,
		limiters: make(map[string]*limiterEntry),
		lastSeen: time.Now(),
	}
}

// Allow reports whether one more request is permitted for key.
func (s *MemoryStore) Allow(key string) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	// Opportunistic sweep, at most once per TTL window.
	if now.Sub(s.lastSeen) > s.ttl {
		for k, e := range s.limiters {
			if now.Sub(e.lastAccess) > s.ttl {
				delete(s.limiters, k)
			}
		}
		s.lastSeen = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter.Allow()
}

// Reset drops the bucket for key.
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.limiters, key)
}
