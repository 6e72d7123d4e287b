package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the EventStore interface using a local SQLite
// database. Suitable for single-node deployments; the WAL journal mode keeps
// the read-then-append sequence from serializing behind writers.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS admission_events (
	id TEXT PRIMARY KEY,
	endpoint TEXT NOT NULL,
	identifier TEXT NOT NULL,
	kind TEXT NOT NULL,
	ts INTEGER NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_admission_events_lookup
	ON admission_events (endpoint, identifier, kind, ts);
`

// NewSQLiteStore creates a new SQLite event store and ensures the schema exists.
func NewSQLiteStore(config Config) (*SQLiteStore, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CountSince returns the number of matching events at or after since.
func (ss *SQLiteStore) CountSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (int, error) {
	var count int
	err := ss.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admission_events
		 WHERE endpoint = ? AND identifier = ? AND kind = ? AND ts >= ?`,
		endpoint, identifier, kind, since.UnixMilli(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// OldestSince returns the timestamp of the oldest matching event at or after since.
func (ss *SQLiteStore) OldestSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (time.Time, bool, error) {
	var ts sql.NullInt64
	err := ss.db.QueryRowContext(ctx,
		`SELECT MIN(ts) FROM admission_events
		 WHERE endpoint = ? AND identifier = ? AND kind = ? AND ts >= ?`,
		endpoint, identifier, kind, since.UnixMilli(),
	).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query oldest event: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ts.Int64), true, nil
}

// Append records a new admission event.
func (ss *SQLiteStore) Append(ctx context.Context, event Event) error {
	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = ss.db.ExecContext(ctx,
		`INSERT INTO admission_events (id, endpoint, identifier, kind, ts, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.Endpoint, event.Identifier, event.Kind,
		event.Timestamp.UnixMilli(), metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// PruneBefore deletes events older than cutoff.
func (ss *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := ss.db.ExecContext(ctx,
		`DELETE FROM admission_events WHERE ts < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return res.RowsAffected()
}

// Ping verifies the database is reachable.
func (ss *SQLiteStore) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close closes the storage connection.
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
