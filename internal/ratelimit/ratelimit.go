// Package ratelimit throttles requests per client IP with token buckets.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/redmonkez12/shop-api/internal/httputil"
	"github.com/redmonkez12/shop-api/internal/logging"
)

// Config describes one limit. A PerMinute of zero or less disables limiting.
type Config struct {
	Name            string // label used in logs and metrics
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

// Metrics counts rejected requests
type Metrics interface {
	RateLimited(name string)
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per client IP. Idle buckets are swept in the background until Stop.
type Limiter struct {
	config  Config
	limit   rate.Limit
	metrics Metrics

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a limiter and starts its cleanup goroutine. metrics may be nil.
func New(config Config, metrics Metrics) *Limiter {
	if config.Burst <= 0 {
		config.Burst = max(config.PerMinute, 1)
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	l := &Limiter{
		config:  config,
		limit:   rate.Limit(float64(config.PerMinute) / 60.0),
		metrics: metrics,
		clients: make(map[string]*clientLimiter),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Stop ends the cleanup goroutine and waits for it to exit
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	<-l.done
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l.config.PerMinute <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r)

		if !l.allow(ip, time.Now()) {
			logging.GetLoggerFromContext(r.Context()).Warn("rate limit exceeded",
				"limit", l.config.Name,
				"ip", ip,
			)
			if l.metrics != nil {
				l.metrics.RateLimited(l.config.Name)
			}
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
			httputil.RespondErrorWithCode(w, "too many requests, try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Len returns the number of tracked clients
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.config.Burst)}
		l.clients[ip] = c
	}
	c.lastAccess = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// retryAfter estimates the seconds until one token is back
func (l *Limiter) retryAfter() int {
	return max(int(math.Ceil(1.0/float64(l.limit))), 1)
}

func (l *Limiter) cleanupLoop() {
	defer close(l.done)

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.cleanup(now)
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than twice the cleanup interval
func (l *Limiter) cleanup(now time.Time) {
	ttl := l.config.CleanupInterval * 2

	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, c := range l.clients {
		if now.Sub(c.lastAccess) > ttl {
			delete(l.clients, ip)
		}
	}
}
