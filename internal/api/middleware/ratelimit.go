package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/config"
	"github.com/AllexanderGM/feeling-sub000/internal/metrics"
)

// Class is a rate-limit traffic class. Credential submissions drain the
// stricter AUTH bucket in addition to the general API bucket.
type Class string

const (
	ClassAuth Class = "AUTH"
	ClassAPI  Class = "API"
)

// bucket holds the admission state for one (ip, class) pair. The window
// resets the count to full capacity once it elapses; there is no
// continuous trickle.
type bucket struct {
	mu           sync.Mutex
	tokens       int
	capacity     int
	lastRefillAt time.Time
}

// take attempts to consume one token, applying a pending window reset
// first. Safe for concurrent callers on the same bucket.
func (b *bucket) take(now time.Time, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastRefillAt) >= window {
		b.tokens = b.capacity
		b.lastRefillAt = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// remaining returns the current token count, applying a pending reset.
func (b *bucket) remaining(now time.Time, window time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastRefillAt) >= window {
		b.tokens = b.capacity
		b.lastRefillAt = now
	}
	return b.tokens
}

// RateLimiter provides per-client, per-class admission control. Buckets are
// created lazily on first request and swept periodically. The limiter is an
// owned, injected component; its state lives and dies with the process.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	authCapacity int
	apiCapacity  int
	window       time.Duration
	now          func() time.Time
}

// NewRateLimiter creates a RateLimiter from config.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		buckets:      make(map[string]*bucket),
		authCapacity: cfg.AuthCapacity,
		apiCapacity:  cfg.APICapacity,
		window:       time.Duration(cfg.WindowSeconds) * time.Second,
		now:          time.Now,
	}
}

// Capacity returns the bucket capacity for a class.
func (l *RateLimiter) Capacity(class Class) int {
	if class == ClassAuth {
		return l.authCapacity
	}
	return l.apiCapacity
}

// getBucket returns the bucket for (ip, class), creating it lazily.
func (l *RateLimiter) getBucket(ip string, class Class) *bucket {
	key := string(class) + ":" + ip

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			tokens:       l.Capacity(class),
			capacity:     l.Capacity(class),
			lastRefillAt: l.now(),
		}
		l.buckets[key] = b
	}
	return b
}

// Allow atomically attempts to consume one token from the (ip, class)
// bucket. Returns true and decrements if a token is available.
func (l *RateLimiter) Allow(ip string, class Class) bool {
	return l.getBucket(ip, class).take(l.now(), l.window)
}

// Remaining returns the current token count for (ip, class), for response
// headers. A never-seen pair reports full capacity without creating a bucket.
func (l *RateLimiter) Remaining(ip string, class Class) int {
	key := string(class) + ":" + ip

	l.mu.Lock()
	b, ok := l.buckets[key]
	l.mu.Unlock()
	if !ok {
		return l.Capacity(class)
	}
	return b.remaining(l.now(), l.window)
}

// Sweep removes buckets whose token count equals full capacity, bounding
// memory for high-cardinality IP sets. Known imprecision, kept from the
// source behavior: an idle-but-partially-drained bucket is never reclaimed
// by this heuristic, and "never used" is indistinguishable from "just
// refilled". Returns the number of buckets removed.
func (l *RateLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.remaining(now, l.window) == b.capacity {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartSweeper schedules the hourly bucket sweep on a cron runner.
// The returned cron must be stopped at shutdown.
func (l *RateLimiter) StartSweeper() (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		removed := l.Sweep()
		slog.Debug("rate limit bucket sweep completed", "removed", removed)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule bucket sweep: %w", err)
	}
	c.Start()
	return c, nil
}

// RateLimitMiddleware enforces admission control before any other pipeline
// stage runs.
type RateLimitMiddleware struct {
	limiter    *RateLimiter
	classifier *RouteClassifier
	metrics    *metrics.Pipeline
}

// NewRateLimitMiddleware creates the middleware with its dependencies.
func NewRateLimitMiddleware(
	limiter *RateLimiter,
	classifier *RouteClassifier,
	m *metrics.Pipeline,
) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:    limiter,
		classifier: classifier,
		metrics:    m,
	}
}

// Handler applies per-client rate limiting. Auth endpoints must pass both
// the AUTH and API buckets for the client IP; everything else consumes only
// the API bucket. Exempt paths bypass the limiter entirely.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if m.classifier.RateLimitExempt(path) {
			next.ServeHTTP(w, r)
			return
		}

		ip := ClientIP(r)
		isAuth := m.classifier.IsAuthEndpoint(path, r.Method)

		if isAuth {
			if !m.limiter.Allow(ip, ClassAuth) {
				m.reject(w, r, ip, ClassAuth, isAuth)
				return
			}
			m.metrics.RateLimitDecisions.WithLabelValues(string(ClassAuth), "allowed").Inc()
		}

		if !m.limiter.Allow(ip, ClassAPI) {
			m.reject(w, r, ip, ClassAPI, isAuth)
			return
		}
		m.metrics.RateLimitDecisions.WithLabelValues(string(ClassAPI), "allowed").Inc()

		m.setHeaders(w, ip, isAuth)
		next.ServeHTTP(w, r)
	})
}

// setHeaders writes the rate-limit response headers for the client.
func (m *RateLimitMiddleware) setHeaders(w http.ResponseWriter, ip string, isAuth bool) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.Capacity(ClassAPI)))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(m.limiter.Remaining(ip, ClassAPI)))
	if isAuth {
		w.Header().Set("X-RateLimit-Limit-Auth", strconv.Itoa(m.limiter.Capacity(ClassAuth)))
		w.Header().
			Set("X-RateLimit-Remaining-Auth", strconv.Itoa(m.limiter.Remaining(ip, ClassAuth)))
	}
}

// reject writes the 429 response for a drained bucket.
func (m *RateLimitMiddleware) reject(
	w http.ResponseWriter,
	r *http.Request,
	ip string,
	class Class,
	isAuth bool,
) {
	m.metrics.RateLimitDecisions.WithLabelValues(string(class), "rejected").Inc()
	m.setHeaders(w, ip, isAuth)
	shared.RespondRateLimited(w, r, "Too many requests, please retry later")
}
