// Package store persists event records produced by the event logger.
//
// The logger depends only on Sink. The concrete stores in this package also
// implement Reader so callers can answer "did an event of type X happen"
// questions, and every persistent store writes the payload as canonical
// JSON so equal payloads are stored as equal bytes.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventlog/pkg/eventlog/canonical"
	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

// Record is one validated event ready to be appended.
type Record struct {
	// SystemEventTypeIDs is the full closure of the requested types, in
	// resolution order.
	SystemEventTypeIDs []string
	// Data is the payload after every schema in the closure was applied.
	Data map[string]any
	// IsWide is true when the caller supplied an explicit interval.
	IsWide         bool
	EventStartedAt time.Time
	EventEndedAt   time.Time
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		SystemEventTypeIDs: slices.Clone(r.SystemEventTypeIDs),
		Data:               schema.Clone(r.Data),
		IsWide:             r.IsWide,
		EventStartedAt:     r.EventStartedAt,
		EventEndedAt:       r.EventEndedAt,
	}
}

// HasType reports whether the record's closure contains id.
func (r *Record) HasType(id string) bool {
	return slices.Contains(r.SystemEventTypeIDs, id)
}

// Sink receives validated records. Insert is called at most once per
// logged event and must not modify the record.
type Sink interface {
	Insert(ctx context.Context, rec *Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rec *Record) error

// Insert calls f.
func (f SinkFunc) Insert(ctx context.Context, rec *Record) error {
	return f(ctx, rec)
}

// Entry is a stored record with the metadata the store assigned to it.
type Entry struct {
	ID         string
	InsertedAt time.Time
	Record
}

// Reader queries stored events.
type Reader interface {
	// ByType returns every entry whose closure contains typeID, in
	// insertion order. Returns an empty slice (not error) when none match.
	ByType(ctx context.Context, typeID string) ([]Entry, error)

	// Count returns the number of entries whose closure contains typeID.
	Count(ctx context.Context, typeID string) (int, error)
}

// Store is a Sink that can also be queried and closed.
// Implementations must be safe for concurrent use.
type Store interface {
	Sink
	Reader
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("event store closed")

	// ErrNilRecord indicates Insert was called without a record.
	ErrNilRecord = errors.New("nil event record")

	// ErrUnknownDriver indicates Open was given an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// newEntryID returns a time-ordered row id.
func newEntryID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate entry id: %w", err)
	}
	return id.String(), nil
}

// encoded is the storage form shared by the persistent stores.
type encoded struct {
	id         string
	typeIDs    []byte
	data       []byte
	isWide     bool
	startedAt  time.Time
	endedAt    time.Time
	insertedAt time.Time
}

func encodeRecord(rec *Record) (*encoded, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	id, err := newEntryID()
	if err != nil {
		return nil, err
	}
	ids := rec.SystemEventTypeIDs
	if ids == nil {
		ids = []string{}
	}
	typeIDs, err := canonical.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode event types: %w", err)
	}
	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := canonical.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	return &encoded{
		id:         id,
		typeIDs:    typeIDs,
		data:       payload,
		isWide:     rec.IsWide,
		startedAt:  rec.EventStartedAt.UTC(),
		endedAt:    rec.EventEndedAt.UTC(),
		insertedAt: time.Now().UTC(),
	}, nil
}

// decodeTimes parses the stored RFC 3339 timestamps of an entry.
func decodeTimes(e *Entry, startedAt, endedAt, insertedAt string) error {
	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"started_at", startedAt, &e.EventStartedAt},
		{"ended_at", endedAt, &e.EventEndedAt},
		{"inserted_at", insertedAt, &e.InsertedAt},
	} {
		t, err := time.Parse(time.RFC3339Nano, f.raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", f.name, err)
		}
		*f.dst = t
	}
	return nil
}

func decodeData(raw []byte) (map[string]any, error) {
	data, err := canonical.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode event data: %w", err)
	}
	return data, nil
}
