package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "events.db")
	store, err := NewSQLiteStore(Config{Type: "sqlite", ConnectionString: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSQLiteStore_RequiresConnectionString(t *testing.T) {
	_, err := NewSQLiteStore(Config{Type: "sqlite"})
	assert.Error(t, err)
}

func TestSQLiteStore_AppendAndCount(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, newEvent("/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now)))
	}
	require.NoError(t, store.Append(ctx, newEvent("/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now.Add(-5*time.Minute))))

	count, err := store.CountSince(ctx, "/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// Other identifiers are unaffected
	count, err = store.CountSince(ctx, "/api/v1/chat", "5.6.7.8", KindRateLimitCheck, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLiteStore_AppendWithMetadata(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	event := newEvent("/api/v1/chat", "1.2.3.4", KindAPIRequest, time.Now())
	event.Metadata = map[string]string{"user_agent": "test-client/1.0"}

	require.NoError(t, store.Append(ctx, event))

	count, err := store.CountSince(ctx, "/api/v1/chat", "1.2.3.4", KindAPIRequest, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_OldestSince(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()
	since := now.Add(-time.Minute)

	_, ok, err := store.OldestSince(ctx, "/api/v1/chat", "1.2.3.4", KindRateLimitCheck, since)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Append(ctx, newEvent("/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now.Add(-40*time.Second))))
	require.NoError(t, store.Append(ctx, newEvent("/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now)))

	oldest, ok, err := store.OldestSince(ctx, "/api/v1/chat", "1.2.3.4", KindRateLimitCheck, since)
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(-40*time.Second), oldest, 2*time.Millisecond)
}

func TestSQLiteStore_PruneBefore(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Append(ctx, newEvent("/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now.Add(-time.Hour))))
	require.NoError(t, store.Append(ctx, newEvent("/api/v1/chat", "1.2.3.4", KindRateLimitCheck, now)))

	removed, err := store.PruneBefore(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := newSQLiteStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
