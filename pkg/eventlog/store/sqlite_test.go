package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventlog/pkg/eventlog/store"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "events.db")

	s1, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.Insert(ctx, signedInRecord("magic_link")))
	require.NoError(t, s1.Close())

	s2, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.ByType(ctx, "$user.signed_in")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "magic_link", entries[0].Data["method"])
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := store.NewSQLiteStore("/nonexistent/path/events.db")
	assert.Error(t, err)
}

func TestSQLiteStore_UnencodablePayload(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	rec := signedInRecord("password")
	rec.Data["bad"] = make(chan int)
	assert.Error(t, s.Insert(context.Background(), rec))

	n, err := s.Count(context.Background(), "$user")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "concurrent.db"))
	require.NoError(t, err)
	defer s.Close()

	const numGoroutines = 10
	const numOps = 10

	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for op := 0; op < numOps; op++ {
				assert.NoError(t, s.Insert(ctx, signedInRecord("passkey")))
			}
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx, "$user.signed_in")
	require.NoError(t, err)
	assert.Equal(t, numGoroutines*numOps, n)
}

func TestSQLiteStore_CorruptTimestamp(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "events.db")

	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Insert(ctx, signedInRecord("password")))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.ExecContext(ctx, `UPDATE events SET started_at = 'garbage'`)
	require.NoError(t, err)

	entries, err := s.ByType(ctx, "$user")
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.Contains(t, err.Error(), "decode started_at")
}
