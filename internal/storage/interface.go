// Package storage provides the shared admission event log backing the server
// admission limiter. The log is append-only: one record per admitted request,
// queried by (endpoint, identifier, kind) within a trailing time window.
package storage

import (
	"context"
	"time"
)

// Event kinds partition counting pools in the shared log. Callers that must
// not cross-count (e.g. the limiter's own checks vs. general API request
// accounting) record distinct kinds.
const (
	KindRateLimitCheck = "rate_limit_check"
	KindAPIRequest     = "api_request"
)

// Event is one admitted request in the shared log. Events are created on
// admission, never updated, and age out of relevance once their timestamp
// falls outside the trailing window.
type Event struct {
	ID         string            `json:"id"`
	Endpoint   string            `json:"endpoint"`
	Identifier string            `json:"identifier"`
	Kind       string            `json:"kind"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// EventStore defines the persistence contract for the admission event log.
// Implementations must be safe for concurrent use; the limiter issues a
// CountSince/OldestSince read and an Append write per admitted request from
// concurrently executing handlers.
type EventStore interface {
	// CountSince returns the number of events matching (endpoint, identifier,
	// kind) with a timestamp at or after since.
	CountSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (int, error)

	// OldestSince returns the timestamp of the oldest matching event at or
	// after since. ok is false when no such event exists.
	OldestSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (oldest time.Time, ok bool, err error)

	// Append records a new admission event.
	Append(ctx context.Context, event Event) error

	// PruneBefore deletes events older than cutoff and returns the number
	// removed. Maintenance only; the limiter never depends on pruning.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping verifies the store is reachable and operational.
	Ping(ctx context.Context) error

	// Close closes the storage connection and cleans up resources.
	Close() error
}

// Config holds configuration for storage backends.
type Config struct {
	// Type specifies the storage backend type (memory, sqlite, postgres).
	Type string `json:"type" yaml:"type"`

	// ConnectionString is used for database backends.
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`

	// MaxOpenConns bounds the database connection pool (database backends).
	MaxOpenConns int `json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`

	// Additional options for specific backends.
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}
