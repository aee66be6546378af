package benchmarks

import (
	"context"
	"testing"
	"time"

	"github.com/randalmurphal/eventlog/pkg/eventlog"
	"github.com/randalmurphal/eventlog/pkg/eventlog/store"
	"github.com/randalmurphal/eventlog/pkg/eventlog/systemtypes"
)

func memberAdded() map[string]any {
	return map[string]any{
		"projectId": "proj_1",
		"teamId":    "team_1",
		"userId":    "user_1",
		"invitedBy": nil,
	}
}

func BenchmarkValidate_SystemDiamond(b *testing.B) {
	c, err := systemtypes.Registry().Resolve(systemtypes.TeamMemberAdded)
	if err != nil {
		b.Fatal(err)
	}
	ids := []string{systemtypes.TeamMemberAdded}
	data := memberAdded()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = eventlog.Validate(c, ids, data)
	}
}

func BenchmarkLogEvent_Discard(b *testing.B) {
	sink := store.SinkFunc(func(context.Context, *store.Record) error { return nil })
	benchmarkLogEvent(b, sink)
}

func BenchmarkLogEvent_Memory(b *testing.B) {
	benchmarkLogEvent(b, store.NewMemoryStore())
}

func BenchmarkLogEvent_SQLite(b *testing.B) {
	s, err := store.NewSQLiteStore(b.TempDir() + "/bench.db")
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = s.Close() })
	benchmarkLogEvent(b, s)
}

func BenchmarkLogEvent_Interval(b *testing.B) {
	l, err := eventlog.New(systemtypes.Registry(), store.NewMemoryStore())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := eventlog.WithTime(eventlog.Between(start, start.Add(time.Hour)))
	data := map[string]any{"projectId": "p", "userId": "u", "sessionId": "s"}
	ids := []string{systemtypes.Session}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.LogEvent(ctx, ids, data, at)
	}
}

func benchmarkLogEvent(b *testing.B, sink store.Sink) {
	b.Helper()
	l, err := eventlog.New(systemtypes.Registry(), sink)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	ids := []string{systemtypes.TeamMemberAdded}
	data := memberAdded()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := l.LogEvent(ctx, ids, data); err != nil {
			b.Fatal(err)
		}
	}
}
