package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the EventStore interface using PostgreSQL. This is
// the production backend: the event log is shared across server instances, so
// quotas hold fleet-wide at the cost of a read+write round-trip per request.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS admission_events (
	id TEXT PRIMARY KEY,
	endpoint TEXT NOT NULL,
	identifier TEXT NOT NULL,
	kind TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	metadata JSONB
);
CREATE INDEX IF NOT EXISTS idx_admission_events_lookup
	ON admission_events (endpoint, identifier, kind, ts);
`

// NewPostgresStore creates a new PostgreSQL event store and ensures the
// schema exists.
func NewPostgresStore(config Config) (*PostgresStore, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	poolCfg, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(config.MaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(context.Background(), postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// CountSince returns the number of matching events at or after since.
func (ps *PostgresStore) CountSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (int, error) {
	var count int
	err := ps.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admission_events
		 WHERE endpoint = $1 AND identifier = $2 AND kind = $3 AND ts >= $4`,
		endpoint, identifier, kind, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// OldestSince returns the timestamp of the oldest matching event at or after since.
func (ps *PostgresStore) OldestSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (time.Time, bool, error) {
	var oldest *time.Time
	err := ps.pool.QueryRow(ctx,
		`SELECT MIN(ts) FROM admission_events
		 WHERE endpoint = $1 AND identifier = $2 AND kind = $3 AND ts >= $4`,
		endpoint, identifier, kind, since,
	).Scan(&oldest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query oldest event: %w", err)
	}
	if oldest == nil {
		return time.Time{}, false, nil
	}
	return *oldest, true, nil
}

// Append records a new admission event.
func (ps *PostgresStore) Append(ctx context.Context, event Event) error {
	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = ps.pool.Exec(ctx,
		`INSERT INTO admission_events (id, endpoint, identifier, kind, ts, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.Endpoint, event.Identifier, event.Kind, event.Timestamp, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// PruneBefore deletes events older than cutoff.
func (ps *PostgresStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := ps.pool.Exec(ctx,
		`DELETE FROM admission_events WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping verifies the database is reachable.
func (ps *PostgresStore) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

// Close closes the connection pool.
func (ps *PostgresStore) Close() error {
	ps.pool.Close()
	return nil
}

// marshalMetadata serializes event metadata for database backends.
// Empty metadata is stored as NULL.
func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}
