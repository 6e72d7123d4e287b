package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localEntry holds a token bucket and its last access time for cleanup.
type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a per-process token-bucket pre-filter keyed by
// endpoint+identifier. It runs before the store-backed admission check so a
// burst from one instance is absorbed locally instead of turning into a
// storm of event-log queries. Each unique key gets its own bucket; a
// background goroutine periodically evicts entries that have not been
// accessed within 2x the cleanup interval.
type LocalLimiter struct {
	rate            rate.Limit
	burst           int
	cleanupInterval time.Duration

	mu      sync.Mutex
	entries map[string]*localEntry
	done    chan struct{}
	closed  bool
}

// NewLocalLimiter creates a pre-filter with the given requests-per-minute
// rate, burst size, and cleanup interval. It starts a background goroutine
// for eviction.
func NewLocalLimiter(requestsPerMinute int, burst int, cleanupInterval time.Duration) *LocalLimiter {
	l := &LocalLimiter{
		rate:            rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:           burst,
		cleanupInterval: cleanupInterval,
		entries:         make(map[string]*localEntry),
		done:            make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow checks whether a request for the given key fits its bucket. On deny
// it also reports how long until the next token is available.
func (l *LocalLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	e, exists := l.entries[key]
	if !exists {
		e = &localEntry{
			limiter: rate.NewLimiter(l.rate, l.burst),
		}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	l.mu.Unlock()

	if e.limiter.Allow() {
		return true, 0
	}

	reservation := e.limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()
	return false, delay
}

// Close stops the background cleanup goroutine.
func (l *LocalLimiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
}

// cleanup periodically evicts entries that have not been accessed within
// 2x the cleanup interval.
func (l *LocalLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.evictStale()
		}
	}
}

// evictStale removes entries older than 2x the cleanup interval.
func (l *LocalLimiter) evictStale() {
	cutoff := time.Now().Add(-2 * l.cleanupInterval)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}
