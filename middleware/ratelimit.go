// ABOUTME: Per-client rate limiting with fixed-window counters
// ABOUTME: Counters live in process memory or in Redis when replicas share them

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Limiter decides whether the next request for key fits in its window.
// When it does not, the returned duration is the time until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type window struct {
	count     int
	expiresAt time.Time
}

// WindowLimiter keeps fixed-window counters in memory, one per key.
type WindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	created int // windows opened since the last sweep
	now     func() time.Time
}

func NewWindowLimiter(limit int, period time.Duration) *WindowLimiter {
	return &WindowLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

func (l *WindowLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]

	// The boundary instant opens a new window.
	if !ok || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}

		l.created++
		if l.created >= 100 {
			l.sweep(now)
			l.created = 0
		}
		return true, 0, nil
	}

	if w.count < l.limit {
		w.count++
		return true, 0, nil
	}
	return false, w.expiresAt.Sub(now), nil
}

// sweep drops expired windows. Caller holds l.mu.
func (l *WindowLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// Counter is an atomic increment with expiry, as provided by cache.Redis.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// SharedLimiter counts in a store shared by every replica, so the limit
// applies to the deployment rather than to each process.
type SharedLimiter struct {
	counter Counter
	limit   int
	period  time.Duration
}

func NewSharedLimiter(counter Counter, limit int, period time.Duration) *SharedLimiter {
	return &SharedLimiter{counter: counter, limit: limit, period: period}
}

func (l *SharedLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	count, ttl, err := l.counter.Incr(ctx, "ratelimit:"+key, l.period)
	if err != nil {
		return false, 0, err
	}
	if count <= int64(l.limit) {
		return true, 0, nil
	}
	if ttl <= 0 {
		ttl = l.period
	}
	return false, ttl, nil
}

// ClientIP keys requests by the leftmost X-Forwarded-For address, falling
// back to RemoteAddr. The header is trusted, so the proxy must sit behind a
// load balancer that sets it.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// RateLimit rejects requests over the limiter's quota with 429. A nil
// limiter disables it, and requests whose key is empty pass through. If the
// limiter's store fails the request is let through.
func RateLimit(limiter Limiter, keyFunc func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || keyFunc == nil {
				next(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				next(w, r)
				return
			}

			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				slog.Warn("Rate limiter unavailable, allowing request", "key", key, "error", err)
				next(w, r)
				return
			}
			if allowed {
				next(w, r)
				return
			}

			retrySeconds := max(int(math.Ceil(retryAfter.Seconds())), 1)
			slog.Warn("Rate limit exceeded", "key", key, "path", sanitizePath(r.URL.Path), "retry_after", retrySeconds)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error":       "Rate limit exceeded",
				"retry_after": retrySeconds,
			})
		}
	}
}
