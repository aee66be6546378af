package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists events to PostgreSQL through a pgx connection pool.
// It shares its table layout (SQLSchema) with SQLStore.
type PgStore struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*PgStore)(nil)

// NewPgStore wraps an existing pool. The store owns the pool after this
// call and closes it in Close.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// OpenPgStore connects to dsn and creates the schema.
func OpenPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := NewPgStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the events table and indexes if missing.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, SQLSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert implements Sink.
func (s *PgStore) Insert(ctx context.Context, rec *Record) error {
	enc, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, type_ids, data, is_wide, started_at, ended_at, inserted_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)`,
		enc.id, typeIDsOf(rec), string(enc.data), enc.isWide,
		enc.startedAt, enc.endedAt, enc.insertedAt); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ByType implements Reader.
func (s *PgStore) ByType(ctx context.Context, typeID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, type_ids, data::text, is_wide, started_at, ended_at, inserted_at
		FROM events
		WHERE $1 = ANY(type_ids)
		ORDER BY inserted_at, id`, typeID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e    Entry
			data string
		)
		if err := row.Scan(&e.ID, &e.SystemEventTypeIDs, &data, &e.IsWide,
			&e.EventStartedAt, &e.EventEndedAt, &e.InsertedAt); err != nil {
			return Entry{}, err
		}
		decoded, err := decodeData([]byte(data))
		if err != nil {
			return Entry{}, err
		}
		e.Data = decoded
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Count implements Reader.
func (s *PgStore) Count(ctx context.Context, typeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE $1 = ANY(type_ids)`, typeID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *PgStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.pool.Close()
	}
	return nil
}
