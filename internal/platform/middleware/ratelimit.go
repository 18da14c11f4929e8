package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig tunes the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// bucket is a token bucket refilled lazily on each take.
type bucket struct {
	mu    sync.Mutex
	level float64
	last  time.Time
}

// limiter keeps one bucket per client key.
type limiter struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	clients map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{cfg: cfg, clients: make(map[string]*bucket)}
}

func (l *limiter) bucketFor(key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.clients[key]
	if !ok {
		b = &bucket{level: float64(l.cfg.BurstSize), last: time.Now()}
		l.clients[key] = b
	}
	return b
}

// take consumes one token for key. When refused it also reports how many
// seconds the client should wait before retrying.
func (l *limiter) take(key string) (bool, int) {
	b := l.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.level += now.Sub(b.last).Seconds() * l.cfg.RequestsPerSecond
	if max := float64(l.cfg.BurstSize); b.level > max {
		b.level = max
	}
	b.last = now

	if b.level >= 1 {
		b.level--
		return true, 0
	}
	if l.cfg.RequestsPerSecond <= 0 {
		return false, 1
	}
	return false, int((1-b.level)/l.cfg.RequestsPerSecond) + 1
}

// RateLimit enforces a per-client-IP request budget and answers 429 with a
// Retry-After hint when it is exhausted.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	l := newLimiter(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := l.take(c.RealIP())
			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
