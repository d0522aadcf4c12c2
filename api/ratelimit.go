package api

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finance-search/observability"

	"github.com/redis/go-redis/v9"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

type limitStore interface {
	// allow records one hit for key and reports whether it is within the limit.
	allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter caps /api/ requests per client IP in fixed windows. Without
// redis each process keeps its own counters; with redis all instances share
// them.
type RateLimiter struct {
	store  limitStore
	limit  int
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration, client *redis.Client) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	var store limitStore
	if client != nil {
		store = &redisWindow{client: client, limit: limit, window: window}
	} else {
		store = newLocalWindow(limit, window)
	}
	return &RateLimiter{store: store, limit: limit, window: window}
}

// Middleware applies the limit to /api/ paths only. Store failures let the
// request through.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAPIPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ok, err := l.store.allow(r.Context(), clientIP(r))
		if err != nil {
			observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("rate limit store unavailable")
			ok = true
		}
		w.Header().Set("RateLimit-Limit", strconv.Itoa(l.limit))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(l.window.Seconds()))))
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", rateLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// localWindow counts hits per key in fixed windows held in process memory.
// Keys whose window has ended are swept at most once per window.
type localWindow struct {
	mu        sync.Mutex
	counts    map[string]*windowCount
	limit     int
	window    time.Duration
	nextSweep time.Time
	now       func() time.Time
}

type windowCount struct {
	hits  int
	start time.Time
}

func newLocalWindow(limit int, window time.Duration) *localWindow {
	return &localWindow{
		counts: make(map[string]*windowCount),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (s *localWindow) allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !now.Before(s.nextSweep) {
		for k, c := range s.counts {
			if now.Sub(c.start) >= s.window {
				delete(s.counts, k)
			}
		}
		s.nextSweep = now.Add(s.window)
	}

	c, ok := s.counts[key]
	if !ok || now.Sub(c.start) >= s.window {
		c = &windowCount{start: now}
		s.counts[key] = c
	}
	c.hits++
	return c.hits <= s.limit, nil
}

func (s *localWindow) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// redisWindow counts hits per key in a fixed window shared through redis.
type redisWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func (s *redisWindow) allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().UnixNano()/int64(s.window))

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit increment: %w", err)
	}
	return incr.Val() <= int64(s.limit), nil
}
