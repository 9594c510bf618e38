// Package ratelimit implements fixed-window request limits backed by Redis.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/go-redis/redis/v8"
)

// Limiter allows at most limit hits per key within each window
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// New creates a Limiter. Keys are stored under "ratelimit:<prefix>:".
func New(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		prefix: "ratelimit:" + prefix + ":",
		limit:  int64(limit),
		window: window,
	}
}

// Allow records a hit for key. It reports whether the hit is within the
// limit and, if not, how long until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := l.prefix + key

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, l.window)
		incr = pipe.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to record hit: %w", err)
	}

	if incr.Val() <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

// KeyFromRequest keys requests by client IP. chi's RealIP middleware has
// already rewritten RemoteAddr when a proxy header is present.
func KeyFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429. Requests pass
// through when Redis is unavailable.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := KeyFromRequest(r)
		allowed, retryAfter, err := l.Allow(r.Context(), key)
		if err != nil {
			observability.WithContext(r.Context()).WithError(err).Warn("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			observability.WithContext(r.Context()).
				WithField("client_ip", key).
				WithField("path", r.URL.Path).
				Warn("Rate limit exceeded")

			seconds := int(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Too many attempts. Please try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
