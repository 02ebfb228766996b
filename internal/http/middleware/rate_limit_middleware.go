package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/m3dev4/essenz/internal/device"
	"github.com/m3dev4/essenz/internal/http/response"
)

// LocalRateLimiter is a fixed-window per-IP limiter held in process
// memory. Good enough for a single replica; multi-replica deployments
// use the Redis variant.
type LocalRateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*window
}

type window struct {
	count int
	reset time.Time
}

func NewLocalRateLimiter(limit int, windowSize time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:   limit,
		window:  windowSize,
		buckets: map[string]*window{},
	}
}

// Allow reports whether key may proceed and how long until the window
// resets when it may not.
func (l *LocalRateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.After(b.reset) {
		l.buckets[key] = &window{count: 1, reset: now.Add(l.window)}
		if len(l.buckets) > 10000 {
			l.evictLocked(now)
		}
		return true, 0
	}
	if b.count >= l.limit {
		return false, time.Until(b.reset)
	}
	b.count++
	return true, 0
}

func (l *LocalRateLimiter) evictLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.After(b.reset) {
			delete(l.buckets, k)
		}
	}
}

func (l *LocalRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryIn := l.Allow(device.ClientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryIn.Seconds())+1))
			response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
