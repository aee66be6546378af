package eventlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventlog/pkg/eventlog/eventtype"
	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
	"github.com/randalmurphal/eventlog/pkg/eventlog/store"
)

// recordingSink counts Insert calls and keeps every record it receives.
type recordingSink struct {
	mu      sync.Mutex
	records []*store.Record
	err     error
}

func (s *recordingSink) Insert(_ context.Context, rec *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

func (s *recordingSink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *recordingSink) last() *store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return nil
	}
	return s.records[len(s.records)-1]
}

// failingSchema always returns a plain error.
type failingSchema struct{ err error }

func (f failingSchema) Parse(map[string]any) (map[string]any, error) { return nil, f.err }

var errSchemaBroken = errors.New("schema backend unavailable")

// testRegistry is a diamond plus a few leaves:
//
//	$base <- $left, $right <- $diamond
//	$base <- $broken
//	$base <- $checked (requires "flag")
func testRegistry(t *testing.T) *eventtype.Registry {
	t.Helper()
	r, err := eventtype.Build([]eventtype.Definition{
		{ID: "$base", Schema: schema.Object(schema.Field("projectId", schema.String()))},
		{ID: "$left", Inherits: []string{"$base"}, Schema: schema.Object(
			schema.Field("side", schema.Enum("left", "both")).Default("left"),
		)},
		{ID: "$right", Inherits: []string{"$base"}, Schema: schema.Object(
			schema.Field("side", schema.Enum("left", "right", "both")),
			schema.Field("weight", schema.Mixed()).Optional(),
		)},
		{ID: "$diamond", Inherits: []string{"$left", "$right"}, Schema: schema.Object(
			schema.Field("note", schema.String()).Optional().Nullable(),
		)},
		{ID: "$broken", Inherits: []string{"$base"}, Schema: failingSchema{err: errSchemaBroken}},
		{ID: "$checked", Inherits: []string{"$base"}, Schema: schema.Object(
			schema.Field("flag", schema.Enum("on", "off")),
		)},
	})
	require.NoError(t, err)
	return r
}

// fixedClock returns a clock that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var clockTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestLogger(t *testing.T, sink store.Sink, opts ...Option) *Logger {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(clockTime))}, opts...)
	l, err := New(testRegistry(t), sink, opts...)
	require.NoError(t, err)
	return l
}
