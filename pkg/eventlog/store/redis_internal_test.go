package store

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamValues_RoundTrip(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	enc, err := encodeRecord(&Record{
		SystemEventTypeIDs: []string{"$session", "$user", "$project"},
		Data:               map[string]any{"sessionId": "s1", "userId": "u1", "projectId": "p1"},
		IsWide:             true,
		EventStartedAt:     start,
		EventEndedAt:       start.Add(time.Hour),
	})
	require.NoError(t, err)

	values := streamValues(enc)
	assert.Equal(t, `{"projectId":"p1","sessionId":"s1","userId":"u1"}`, values["data"])
	assert.Equal(t, `["$session","$user","$project"]`, values["type_ids"])
	assert.Equal(t, "true", values["is_wide"])

	e, err := decodeStreamMessage(redis.XMessage{ID: "1-0", Values: values})
	require.NoError(t, err)
	assert.Equal(t, enc.id, e.ID)
	assert.Equal(t, []string{"$session", "$user", "$project"}, e.SystemEventTypeIDs)
	assert.Equal(t, "s1", e.Data["sessionId"])
	assert.True(t, e.IsWide)
	assert.True(t, start.Equal(e.EventStartedAt))
	assert.True(t, start.Add(time.Hour).Equal(e.EventEndedAt))
}

func TestDecodeStreamMessage_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"bad type ids", map[string]any{"type_ids": "[", "data": "{}", "is_wide": "false"}},
		{"bad data", map[string]any{"type_ids": "[]", "data": "{", "is_wide": "false"}},
		{"bad is_wide", map[string]any{"type_ids": "[]", "data": "{}", "is_wide": "maybe"}},
		{"bad started_at", validStreamValues("started_at", "garbage")},
		{"missing ended_at", validStreamValues("ended_at", "")},
		{"bad inserted_at", validStreamValues("inserted_at", "yesterday")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeStreamMessage(redis.XMessage{ID: "1-0", Values: tt.values})
			assert.Error(t, err)
		})
	}
}

// validStreamValues returns a decodable message with one field replaced.
func validStreamValues(key, value string) map[string]any {
	ts := "2024-05-01T09:00:00Z"
	values := map[string]any{
		"id": "e1", "type_ids": `["$user"]`, "data": "{}", "is_wide": "false",
		"started_at": ts, "ended_at": ts, "inserted_at": ts,
	}
	values[key] = value
	return values
}

func TestDecodeStreamMessage_Valid(t *testing.T) {
	e, err := decodeStreamMessage(redis.XMessage{ID: "1-0", Values: validStreamValues("id", "e2")})
	require.NoError(t, err)
	assert.Equal(t, "e2", e.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), e.EventStartedAt)
}

func TestNewRedisStreamStore_DefaultStream(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	s := NewRedisStreamStore(client, "")
	assert.Equal(t, DefaultStream, s.Stream())
	require.NoError(t, s.Close())
}

func TestEncodeRecord_Nil(t *testing.T) {
	_, err := encodeRecord(nil)
	assert.ErrorIs(t, err, ErrNilRecord)
}
