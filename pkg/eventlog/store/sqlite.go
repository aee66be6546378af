package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists events to SQLite.
// It is suitable for single-process production use.
//
// Each event is one row in events plus one row per closure member in
// event_types, written in a single transaction.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite event store.
// The path should be a file path (e.g., "./events.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A :memory: database exists per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type_ids TEXT NOT NULL,
			data BLOB NOT NULL,
			is_wide INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			inserted_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS event_types (
			event_id TEXT NOT NULL REFERENCES events(id),
			type_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (event_id, type_id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create event_types table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_event_types_type_id
		ON event_types(type_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert implements Sink.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	enc, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, type_ids, data, is_wide, started_at, ended_at, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, enc.id, string(enc.typeIDs), enc.data, enc.isWide,
		formatTime(enc.startedAt), formatTime(enc.endedAt), formatTime(enc.insertedAt)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	for i, typeID := range rec.SystemEventTypeIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO event_types (event_id, type_id, position)
			VALUES (?, ?, ?)
		`, enc.id, typeID, i); err != nil {
			return fmt.Errorf("insert event type %s: %w", typeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}
	return nil
}

// ByType implements Reader.
func (s *SQLiteStore) ByType(ctx context.Context, typeID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.type_ids, e.data, e.is_wide, e.started_at, e.ended_at, e.inserted_at
		FROM events e
		JOIN event_types t ON t.event_id = e.id
		WHERE t.type_id = ?
		ORDER BY e.seq
	`, typeID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                          Entry
			typeIDs                    string
			data                       []byte
			started, ended, insertedAt string
		)
		if err := rows.Scan(&e.ID, &typeIDs, &data, &e.IsWide, &started, &ended, &insertedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(typeIDs), &e.SystemEventTypeIDs); err != nil {
			return nil, fmt.Errorf("decode event types: %w", err)
		}
		if e.Data, err = decodeData(data); err != nil {
			return nil, err
		}
		if err := decodeTimes(&e, started, ended, insertedAt); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

// Count implements Reader.
func (s *SQLiteStore) Count(ctx context.Context, typeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM event_types WHERE type_id = ?
	`, typeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
