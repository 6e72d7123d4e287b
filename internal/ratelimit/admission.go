package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"lanagate/internal/storage"
)

// IdentifierUnknown is the sentinel used when the requester cannot be
// identified from request metadata. Requests carrying it are admitted without
// counting: blind blocking would punish legitimate users behind proxies that
// strip identifying headers.
const IdentifierUnknown = "unknown"

// AdmissionLimiter is the authoritative (best-effort) admission control for
// the gateway's costly endpoints. All state lives in the shared event store,
// which makes the limiter horizontally scalable at the cost of a read+write
// round-trip per request.
//
// The count-then-append sequence is not atomic: concurrent requests from the
// same identifier can each read a count below the limit before either
// records, over-admitting by up to the concurrency degree minus one. The
// event store offers no conditional-increment primitive, so quotas are sized
// with headroom for that instead.
type AdmissionLimiter struct {
	store        storage.EventStore
	table        PolicyTable
	kind         string
	storeTimeout time.Duration

	now func() time.Time // test hook
}

// Option configures an AdmissionLimiter.
type Option func(*AdmissionLimiter)

// WithKind sets the event kind recorded and counted by this limiter. Two
// limiters with different kinds over the same store never cross-count.
func WithKind(kind string) Option {
	return func(a *AdmissionLimiter) {
		a.kind = kind
	}
}

// WithStoreTimeout bounds each event-store round-trip. A timeout is treated
// as a store failure and fails open. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(a *AdmissionLimiter) {
		a.storeTimeout = d
	}
}

// NewAdmissionLimiter creates a limiter over the given event store and quota
// table. By default it records storage.KindRateLimitCheck events with a
// 2-second store timeout.
func NewAdmissionLimiter(store storage.EventStore, table PolicyTable, opts ...Option) *AdmissionLimiter {
	a := &AdmissionLimiter{
		store:        store,
		table:        table,
		kind:         storage.KindRateLimitCheck,
		storeTimeout: 2 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allow decides whether a request for endpoint from identifier is admitted.
// It never returns an error: quota exhaustion is a normal Decision, and every
// internal failure (unresolvable identifier, store read failure, store write
// failure, timeout) resolves to fail-open admit with a log line.
func (a *AdmissionLimiter) Allow(ctx context.Context, endpoint, identifier string) Decision {
	if identifier == "" || identifier == IdentifierUnknown {
		slog.Warn("Rate limit check skipped: requester could not be identified",
			"endpoint", endpoint)
		return failOpen()
	}

	policy := a.table.Lookup(endpoint)
	now := a.now()
	windowStart := now.Add(-policy.Window)

	if a.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.storeTimeout)
		defer cancel()
	}

	count, err := a.store.CountSince(ctx, endpoint, identifier, a.kind, windowStart)
	if err != nil {
		slog.Error("Rate limit count query failed, failing open",
			"endpoint", endpoint, "identifier", identifier, "error", err)
		return failOpen()
	}

	if count >= policy.MaxRequests {
		return a.deny(ctx, endpoint, identifier, policy, now, windowStart)
	}

	event := storage.Event{
		ID:         uuid.New().String(),
		Endpoint:   endpoint,
		Identifier: identifier,
		Kind:       a.kind,
		Timestamp:  now,
	}
	if err := a.store.Append(ctx, event); err != nil {
		// The decision is already made; never penalize the caller for a
		// storage hiccup.
		slog.Error("Failed to record admission event",
			"endpoint", endpoint, "identifier", identifier, "error", err)
	}

	remaining := policy.MaxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   true,
		Limit:     policy.MaxRequests,
		Remaining: remaining,
		ResetTime: now.Add(policy.Window),
	}
}

// deny builds the QuotaExceeded decision. RetryAfter is the time until the
// window containing the oldest counted event fully elapses; if the oldest
// event cannot be determined the full window is assumed.
func (a *AdmissionLimiter) deny(ctx context.Context, endpoint, identifier string, policy Policy, now, windowStart time.Time) Decision {
	resetTime := now.Add(policy.Window)
	oldest, ok, err := a.store.OldestSince(ctx, endpoint, identifier, a.kind, windowStart)
	if err != nil {
		slog.Error("Rate limit oldest-event query failed",
			"endpoint", endpoint, "identifier", identifier, "error", err)
	} else if ok {
		resetTime = oldest.Add(policy.Window)
	}

	retryAfter := resetTime.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}

	return Decision{
		Allowed:    false,
		Limit:      policy.MaxRequests,
		Remaining:  0,
		RetryAfter: retryAfter,
		ResetTime:  resetTime,
	}
}

// ClientIdentifier derives the rate-limit identifier from request metadata:
// the first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr, falling
// back to the IdentifierUnknown sentinel.
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return IdentifierUnknown
}
