package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements the EventStore interface using in-memory data
// structures. This provider is ideal for development, testing, and single
// instance deployments where the event log does not need to survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[eventKey][]Event
	closed bool
}

type eventKey struct {
	endpoint   string
	identifier string
	kind       string
}

// NewMemoryStore creates a new memory-based event store.
func NewMemoryStore(config Config) (*MemoryStore, error) {
	return &MemoryStore{
		events: make(map[eventKey][]Event),
	}, nil
}

// CountSince returns the number of matching events at or after since.
func (m *MemoryStore) CountSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrClosed
	}

	count := 0
	for _, e := range m.events[eventKey{endpoint, identifier, kind}] {
		if !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

// OldestSince returns the timestamp of the oldest matching event at or after since.
func (m *MemoryStore) OldestSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return time.Time{}, false, ErrClosed
	}

	var oldest time.Time
	found := false
	for _, e := range m.events[eventKey{endpoint, identifier, kind}] {
		if e.Timestamp.Before(since) {
			continue
		}
		if !found || e.Timestamp.Before(oldest) {
			oldest = e.Timestamp
			found = true
		}
	}
	return oldest, found, nil
}

// Append records a new admission event.
func (m *MemoryStore) Append(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	key := eventKey{event.Endpoint, event.Identifier, event.Kind}
	m.events[key] = append(m.events[key], event)
	return nil
}

// PruneBefore deletes events older than cutoff.
func (m *MemoryStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	var removed int64
	for key, events := range m.events {
		kept := events[:0]
		for _, e := range events {
			if e.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(m.events, key)
		} else {
			m.events[key] = kept
		}
	}
	return removed, nil
}

// Ping verifies the store is operational.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed. Subsequent operations return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.events = nil
	return nil
}
