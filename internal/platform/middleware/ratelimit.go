package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig bounds requests per client IP. A zero RequestsPerSecond
// disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// ExcludePaths are never limited (prefix match).
	ExcludePaths []string

	now func() time.Time
}

// DefaultRateLimitConfig is generous enough for a DOCX mapper warming its
// cache while still stopping runaway loops.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		ExcludePaths:      []string{"/health"},
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
}

// take refills the bucket up to now and consumes one token. When empty it
// returns the seconds until the next token.
func (b *tokenBucket) take(now time.Time) (ok bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(b.maxTokens, b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillRate)
	b.lastRefill = now
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, int(math.Ceil((1 - b.tokens) / b.refillRate))
}

type bucketStore struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	cfg     RateLimitConfig
}

func (s *bucketStore) get(key string, now time.Time) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = &tokenBucket{
			tokens:     float64(s.cfg.BurstSize),
			maxTokens:  float64(s.cfg.BurstSize),
			refillRate: s.cfg.RequestsPerSecond,
			lastRefill: now,
		}
		s.buckets[key] = b
	}
	return b
}

// RateLimit answers 429 with Retry-After once a client IP has spent its
// burst.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	store := &bucketStore{buckets: map[string]*tokenBucket{}, cfg: cfg}
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range cfg.ExcludePaths {
				if strings.HasPrefix(path, p) {
					return next(c)
				}
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			now := cfg.now()
			if ok, retryAfter := store.get(c.RealIP(), now).take(now); !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
