package ratelimit

import (
	"sync"
	"time"
)

// Throttle is the in-process request throttle: a per-endpoint sliding window
// over a timestamp log. It is advisory only - a cheap guard against a single
// client context hammering an endpoint - and is NOT a security boundary.
// Each process owns its own instance; there is no cross-instance sharing.
//
// The check-and-record step is a single critical section so concurrent
// callers can never admit limit+1 requests into one window.
type Throttle struct {
	table PolicyTable

	mu      sync.Mutex
	windows map[string][]time.Time

	now func() time.Time // test hook
}

// NewThrottle creates a throttle using the given quota table.
func NewThrottle(table PolicyTable) *Throttle {
	return &Throttle{
		table:   table,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether another request to endpoint fits in the trailing
// window. On admit it records the request timestamp; on deny it has no side
// effect.
func (t *Throttle) Allow(endpoint string) bool {
	policy := t.table.Lookup(endpoint)
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.prune(endpoint, now.Add(-policy.Window))
	if len(recent) >= policy.MaxRequests {
		return false
	}

	t.windows[endpoint] = append(recent, now)
	return true
}

// TimeUntilNext returns how long the caller must wait before Allow(endpoint)
// can succeed, for "retry in N seconds" messaging. Returns 0 when a request
// is currently allowed.
func (t *Throttle) TimeUntilNext(endpoint string) time.Duration {
	policy := t.table.Lookup(endpoint)
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.prune(endpoint, now.Add(-policy.Window))
	if len(recent) < policy.MaxRequests {
		return 0
	}

	// The window frees up when the oldest recorded timestamp ages out.
	wait := recent[0].Add(policy.Window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// prune drops timestamps older than cutoff for endpoint and returns the
// remainder. Caller must hold t.mu. Recorded timestamps are append-ordered,
// so the survivors keep the oldest first.
func (t *Throttle) prune(endpoint string, cutoff time.Time) []time.Time {
	recorded := t.windows[endpoint]
	idx := 0
	for idx < len(recorded) && recorded[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		recorded = recorded[idx:]
		if len(recorded) == 0 {
			delete(t.windows, endpoint)
		} else {
			t.windows[endpoint] = recorded
		}
	}
	return recorded
}
