package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinote/clinote/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration. Name separates the
// buckets of independent limiters in logs and headers.
type RateLimitConfig struct {
	Name              string
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig allows 100 requests per 15 minutes.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:              "api",
		RequestsPerSecond: 100.0 / 900.0,
		BurstSize:         100,
	}
}

// ImageRateLimitConfig allows 10 image extractions per 15 minutes.
func ImageRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:              "image",
		RequestsPerSecond: 10.0 / 900.0,
		BurstSize:         10,
	}
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: now,
	}
}

func (b *tokenBucket) refill(now time.Time) {
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now
}

// take consumes a token. It returns the remaining whole tokens, or -1 when
// the bucket is empty.
func (b *tokenBucket) take(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return int(b.tokens)
	}
	return -1
}

func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

// full reports whether the bucket has refilled completely, meaning it holds
// no state worth keeping.
func (b *tokenBucket) full(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(now)
	return b.tokens >= b.maxTokens
}

type rateLimiterStore struct {
	buckets map[string]*tokenBucket
	mu      sync.RWMutex
	config  RateLimitConfig
	now     func() time.Time
	sweeps  int
}

func newRateLimiterStore(cfg RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		buckets: make(map[string]*tokenBucket),
		config:  cfg,
		now:     time.Now,
	}
}

// sweepEvery is how many new buckets are created between evictions of full
// buckets.
const sweepEvery = 1024

func (s *rateLimiterStore) getBucket(key string) *tokenBucket {
	s.mu.RLock()
	bucket, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return bucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.buckets[key]; ok {
		return bucket
	}
	now := s.now()
	s.sweeps++
	if s.sweeps%sweepEvery == 0 {
		for k, b := range s.buckets {
			if b.full(now) {
				delete(s.buckets, k)
			}
		}
	}
	bucket = newTokenBucket(s.config.RequestsPerSecond, s.config.BurstSize, now)
	s.buckets[key] = bucket
	return bucket
}

// rateLimitKey identifies the caller: the authenticated user when there is
// one, otherwise the client IP.
func rateLimitKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}

// RateLimit returns a token bucket rate limiting middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newRateLimiterStore(cfg)
	limit := strconv.Itoa(cfg.BurstSize)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bucket := store.getBucket(rateLimitKey(c))
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			remaining := bucket.take(store.now())
			if remaining < 0 {
				h.Set("Retry-After", strconv.Itoa(bucket.retryAfter()))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later.")
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			return next(c)
		}
	}
}
