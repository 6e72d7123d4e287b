// Package ratelimit provides admission control for the gateway's costly
// endpoints. It has two cooperating layers: an in-process sliding-window
// throttle (advisory, per endpoint) and a store-backed admission limiter that
// counts admitted requests per (endpoint, identifier) in a shared event log.
// The admission limiter fails open on every internal failure: an outage in
// the limiter must never cascade into an outage of the protected feature.
package ratelimit

import "time"

// Decision is the result of an admission check. QuotaExceeded is expressed as
// Allowed=false with RetryAfter set; it is never an error.
type Decision struct {
	Allowed    bool
	Limit      int           // Maximum requests per window
	Remaining  int           // Requests left in the current window (approximate)
	RetryAfter time.Duration // How long to wait (meaningful only when denied)
	ResetTime  time.Time     // When the window containing the oldest counted request elapses
}

// failOpen is the decision used on every internal failure path. Limit
// and Remaining are zero; the middleware skips quota headers in that case.
func failOpen() Decision {
	return Decision{Allowed: true}
}
