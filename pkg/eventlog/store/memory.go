package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Useful for tests and
// examples; data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert implements Sink. The record is deep-copied.
func (m *MemoryStore) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrNilRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := newEntryID()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.entries = append(m.entries, Entry{
		ID:         id,
		InsertedAt: time.Now().UTC(),
		Record:     *rec.Clone(),
	})
	return nil
}

// ByType implements Reader.
func (m *MemoryStore) ByType(_ context.Context, typeID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	out := []Entry{}
	for _, e := range m.entries {
		if e.HasType(typeID) {
			out = append(out, Entry{ID: e.ID, InsertedAt: e.InsertedAt, Record: *e.Record.Clone()})
		}
	}
	return out, nil
}

// Count implements Reader.
func (m *MemoryStore) Count(_ context.Context, typeID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	n := 0
	for _, e := range m.entries {
		if e.HasType(typeID) {
			n++
		}
	}
	return n, nil
}

// Len returns the total number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
