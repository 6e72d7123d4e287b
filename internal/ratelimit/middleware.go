package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lanagate/internal/models"
)

// Middleware returns HTTP middleware that gates one logical endpoint behind
// the admission limiter, optionally fronted by the local token-bucket
// pre-filter (pass nil to skip it). Quota state is surfaced via the standard
// X-RateLimit-* headers; denials are HTTP 429 with a Retry-After header and
// a JSON body carrying the wait in seconds.
func Middleware(limiter *AdmissionLimiter, local *LocalLimiter, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := ClientIdentifier(r)

			if local != nil {
				if ok, wait := local.Allow(endpoint + "|" + identifier); !ok {
					writeRateLimited(w, wait)
					slog.Warn("Request rejected by local pre-filter",
						"endpoint", endpoint, "identifier", identifier)
					return
				}
			}

			decision := limiter.Allow(r.Context(), endpoint, identifier)

			if decision.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
				w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
				w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", decision.ResetTime.Unix()))
			}

			if !decision.Allowed {
				writeRateLimited(w, decision.RetryAfter)
				slog.Warn("Rate limit exceeded",
					"endpoint", endpoint,
					"identifier", identifier,
					"limit", decision.Limit,
					"retry_after", decision.RetryAfter.Seconds(),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimited emits the 429 response. The wait is rounded up to whole
// seconds so clients honoring Retry-After never retry early.
func writeRateLimited(w http.ResponseWriter, wait time.Duration) {
	retryAfterSecs := int(wait.Seconds())
	if wait > time.Duration(retryAfterSecs)*time.Second {
		retryAfterSecs++
	}
	if retryAfterSecs < 1 {
		retryAfterSecs = 1
	}

	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSecs))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(models.NewRateLimitResponse(retryAfterSecs))
}
