package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream key used when none is configured.
const DefaultStream = "eventlog:events"

// redisPageSize bounds each XRANGE round trip.
const redisPageSize = 500

// RedisStreamStore appends events to a Redis stream with XADD. Readers
// scan the stream, so it suits fan-out to consumers better than ad hoc
// queries over long histories.
type RedisStreamStore struct {
	client *redis.Client
	stream string
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*RedisStreamStore)(nil)

// NewRedisStreamStore wraps a client. An empty stream uses DefaultStream.
func NewRedisStreamStore(client *redis.Client, stream string) *RedisStreamStore {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamStore{client: client, stream: stream}
}

// OpenRedisStreamStore connects to a redis:// URL and verifies the
// connection.
func OpenRedisStreamStore(ctx context.Context, url, stream string) (*RedisStreamStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStreamStore(client, stream), nil
}

// Stream returns the stream key.
func (s *RedisStreamStore) Stream() string {
	return s.stream
}

// Insert implements Sink.
func (s *RedisStreamStore) Insert(ctx context.Context, rec *Record) error {
	enc, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: streamValues(enc),
	}).Err(); err != nil {
		return fmt.Errorf("redis xadd: %w", err)
	}
	return nil
}

// ByType implements Reader.
func (s *RedisStreamStore) ByType(ctx context.Context, typeID string) ([]Entry, error) {
	entries := []Entry{}
	err := s.scan(ctx, func(e Entry) {
		if slices.Contains(e.SystemEventTypeIDs, typeID) {
			entries = append(entries, e)
		}
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count implements Reader.
func (s *RedisStreamStore) Count(ctx context.Context, typeID string) (int, error) {
	n := 0
	err := s.scan(ctx, func(e Entry) {
		if slices.Contains(e.SystemEventTypeIDs, typeID) {
			n++
		}
	})
	return n, err
}

func (s *RedisStreamStore) scan(ctx context.Context, fn func(Entry)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	start := "-"
	for {
		msgs, err := s.client.XRangeN(ctx, s.stream, start, "+", redisPageSize).Result()
		if err != nil {
			return fmt.Errorf("redis xrange: %w", err)
		}
		for _, msg := range msgs {
			e, err := decodeStreamMessage(msg)
			if err != nil {
				return err
			}
			fn(e)
		}
		if len(msgs) < redisPageSize {
			return nil
		}
		start = "(" + msgs[len(msgs)-1].ID
	}
}

// Close implements Store.
func (s *RedisStreamStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func streamValues(enc *encoded) map[string]any {
	return map[string]any{
		"id":          enc.id,
		"type_ids":    string(enc.typeIDs),
		"data":        string(enc.data),
		"is_wide":     strconv.FormatBool(enc.isWide),
		"started_at":  formatTime(enc.startedAt),
		"ended_at":    formatTime(enc.endedAt),
		"inserted_at": formatTime(enc.insertedAt),
	}
}

func decodeStreamMessage(msg redis.XMessage) (Entry, error) {
	field := func(name string) string {
		v, _ := msg.Values[name].(string)
		return v
	}

	var e Entry
	e.ID = field("id")
	if err := json.Unmarshal([]byte(field("type_ids")), &e.SystemEventTypeIDs); err != nil {
		return Entry{}, fmt.Errorf("decode stream entry %s: event types: %w", msg.ID, err)
	}
	data, err := decodeData([]byte(field("data")))
	if err != nil {
		return Entry{}, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
	}
	e.Data = data
	e.IsWide, err = strconv.ParseBool(field("is_wide"))
	if err != nil {
		return Entry{}, fmt.Errorf("decode stream entry %s: is_wide: %w", msg.ID, err)
	}
	if err := decodeTimes(&e, field("started_at"), field("ended_at"), field("inserted_at")); err != nil {
		return Entry{}, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
	}
	return e, nil
}
