// Package models - API response types and error handling.
// This file defines all outgoing API response structures with consistent formatting.
//
// Response Design Principles:
// - Consistent JSON structure across all endpoints
// - Optional fields use omitempty to reduce response size
// - Machine-readable error codes for programmatic handling
// - RFC3339 timestamps for international compatibility
package models

import (
	"time"
)

// ErrorResponse provides structured error information with debugging context.
//
// Error Handling Design:
// - Consistent error structure across all endpoints
// - Machine-readable error codes for programmatic handling
// - Human-readable messages for user interfaces
// - Details map for field-specific validation errors
// - RetryAfter populated only for quota denials
type ErrorResponse struct {
	Error      string            `json:"error"`                 // Error type (always "error")
	Message    string            `json:"message"`               // Human-readable error description
	Code       string            `json:"code,omitempty"`        // Machine-readable error code
	Details    map[string]string `json:"details,omitempty"`     // Field-specific error details
	RetryAfter int               `json:"retryAfter,omitempty"`  // Seconds until a denied request may retry
	Timestamp  time.Time         `json:"timestamp"`             // Error occurrence time
	RequestID  string            `json:"request_id,omitempty"`  // Unique request identifier
}

type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health Status Constants
const (
	StatusHealthy   = "healthy"   // All systems operational
	StatusUnhealthy = "unhealthy" // Major system issues
	StatusDegraded  = "degraded"  // Partial functionality
)

// Standard HTTP Error Codes
//
// Error Code Strategy:
// - Upper-case with underscores for consistency
// - Maps to standard HTTP status codes
// - Machine-readable for client error handling
const (
	ErrorCodeBadRequest         = "BAD_REQUEST"          // 400: Invalid request format
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"      // 400: Invalid request data
	ErrorCodeValidation         = "VALIDATION_ERROR"     // 422: Input validation failed
	ErrorCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"  // 429: Quota exhausted for the window
	ErrorCodeInternalError      = "INTERNAL_ERROR"       // 500: Server-side error
	ErrorCodeUpstreamFailure    = "UPSTREAM_FAILURE"     // 502: AI backend unreachable
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"  // 503: Service temporarily down
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitResponse builds the 429 body surfaced to throttled callers.
// retryAfter is in whole seconds, rounded up so clients never retry early.
func NewRateLimitResponse(retryAfter int) *ErrorResponse {
	resp := NewErrorResponse("Rate limit exceeded. Please try again later.", ErrorCodeRateLimitExceeded)
	resp.RetryAfter = retryAfter
	return resp
}

// WithDetails attaches field-level validation errors to the response.
func (er *ErrorResponse) WithDetails(details map[string]string) *ErrorResponse {
	er.Details = details
	return er
}
