package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3dev4/essenz/internal/device"
	"github.com/m3dev4/essenz/internal/http/response"
)

// FailMode decides what happens when Redis itself is unreachable.
type FailMode int

const (
	// FailOpen lets traffic through when the limiter backend is down.
	FailOpen FailMode = iota
	// FailClosed rejects traffic when the limiter backend is down.
	FailClosed
)

// incrWithExpire counts the request and stamps the window TTL on first
// increment, atomically.
var incrWithExpire = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisRateLimiter is a fixed-window per-IP limiter shared across
// replicas.
type RedisRateLimiter struct {
	client   redis.UniversalClient
	prefix   string
	limit    int
	window   time.Duration
	failMode FailMode
	log      *slog.Logger
}

func NewRedisRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration, failMode FailMode, log *slog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		prefix:   prefix,
		limit:    limit,
		window:   window,
		failMode: failMode,
		log:      log,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := incrWithExpire.Run(ctx, l.client, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Slice()
	if err != nil {
		return false, 0, err
	}
	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)
	if count > int64(l.limit) {
		return false, time.Duration(ttlMs) * time.Millisecond, nil
	}
	return true, 0, nil
}

func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryIn, err := l.Allow(r.Context(), device.ClientIP(r))
		if err != nil {
			l.log.WarnContext(r.Context(), "rate limiter backend error", slog.String("error", err.Error()))
			if l.failMode == FailClosed {
				response.Error(w, r, http.StatusServiceUnavailable, "RATE_LIMITER_DOWN", "service temporarily unavailable", nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryIn.Seconds())+1))
			response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
