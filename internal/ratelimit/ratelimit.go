// Package ratelimit implements per-client request quotas.
//
// Each key (the client IP in practice) gets its own token bucket from
// golang.org/x/time/rate.  A background loop drops buckets that have been
// idle longer than the cleanup interval; call Stop on shutdown.  Limiters
// are constructed in main.go and injected, so tests get isolated instances.
package ratelimit

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrLimited is returned when a key has exhausted its quota.
var ErrLimited = errors.New("rate limit exceeded")

// Config configures a Limiter.
type Config struct {
	RequestsPerMinute int           // 0 disables limiting
	Burst             int           // defaults to RequestsPerMinute
	CleanupInterval   time.Duration // defaults to one minute
	IdleTTL           time.Duration // defaults to ten minutes
}

// Limiter is safe for concurrent use.
type Limiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*client

	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a Limiter and starts its cleanup loop.
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}

	l := &Limiter{
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:   cfg.Burst,
		idle:    cfg.IdleTTL,
		now:     time.Now,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}
	if cfg.RequestsPerMinute <= 0 {
		l.limit = rate.Inf
	}
	go l.cleanup(cfg.CleanupInterval)
	return l
}

// Allow consumes one token for key.  It returns ErrLimited when none is left.
func (l *Limiter) Allow(key string) error {
	if l.limit == rate.Inf {
		return nil
	}
	now := l.now()

	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	if !c.lim.AllowN(now, 1) {
		return ErrLimited
	}
	return nil
}

// RetryAfter is the wait, rounded up to whole seconds, before one more token
// becomes available at the steady rate.
func (l *Limiter) RetryAfter() time.Duration {
	if l.limit == rate.Inf || l.limit <= 0 {
		return 0
	}
	d := time.Duration(float64(time.Second) / float64(l.limit))
	return d.Round(time.Second) + time.Second
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Stop ends the cleanup loop.  It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

// evictIdle drops keys not seen within the idle TTL.
func (l *Limiter) evictIdle() {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	for k, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, k)
		}
	}
	l.mu.Unlock()
}
