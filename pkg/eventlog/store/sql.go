package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
)

// SQLSchema creates the PostgreSQL table used by SQLStore and PgStore.
const SQLSchema = `
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	type_ids    TEXT[] NOT NULL,
	data        JSONB NOT NULL DEFAULT '{}',
	is_wide     BOOLEAN NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_type_ids ON events USING GIN(type_ids);
CREATE INDEX IF NOT EXISTS idx_events_inserted_at ON events(inserted_at, id);
`

// SQLStore persists events to PostgreSQL through database/sql and the
// lib/pq driver.
type SQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an open database handle. Call EnsureSchema before the
// first insert when the table may not exist.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore opens a PostgreSQL connection with lib/pq and creates the
// schema.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := NewSQLStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the events table and indexes if missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SQLSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert implements Sink.
func (s *SQLStore) Insert(ctx context.Context, rec *Record) error {
	enc, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, type_ids, data, is_wide, started_at, ended_at, inserted_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)
	`, enc.id, pq.Array(typeIDsOf(rec)), string(enc.data), enc.isWide,
		enc.startedAt, enc.endedAt, enc.insertedAt); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ByType implements Reader.
func (s *SQLStore) ByType(ctx context.Context, typeID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type_ids, data, is_wide, started_at, ended_at, inserted_at
		FROM events
		WHERE $1 = ANY(type_ids)
		ORDER BY inserted_at, id
	`, typeID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e    Entry
			data []byte
		)
		if err := rows.Scan(&e.ID, pq.Array(&e.SystemEventTypeIDs), &data, &e.IsWide,
			&e.EventStartedAt, &e.EventEndedAt, &e.InsertedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Data, err = decodeData(data); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

// Count implements Reader.
func (s *SQLStore) Count(ctx context.Context, typeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE $1 = ANY(type_ids)`, typeID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func typeIDsOf(rec *Record) []string {
	if rec.SystemEventTypeIDs == nil {
		return []string{}
	}
	return rec.SystemEventTypeIDs
}
