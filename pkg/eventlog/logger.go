package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/eventlog/pkg/eventlog/eventtype"
	"github.com/randalmurphal/eventlog/pkg/eventlog/observability"
	"github.com/randalmurphal/eventlog/pkg/eventlog/store"
)

// Logger validates events against a registry and appends them to a sink.
// A Logger holds no mutable state and is safe for concurrent use.
type Logger struct {
	registry *eventtype.Registry
	sink     store.Sink
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	now      func() time.Time
}

// New creates a Logger that checks requested types against registry and
// writes accepted records to sink.
func New(registry *eventtype.Registry, sink store.Sink, opts ...Option) (*Logger, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if sink == nil {
		return nil, ErrNilSink
	}

	cfg := defaultLoggerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Logger{
		registry: registry,
		sink:     sink,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		spans:    cfg.spans,
		now:      cfg.now,
	}, nil
}

// Registry returns the registry the logger validates against.
func (l *Logger) Registry() *eventtype.Registry {
	return l.registry
}

// LogEvent validates data against every type reachable from typeIDs and
// appends one record to the sink.
//
// Every requested id must be a registered system type; otherwise a
// *ConfigError naming all offenders is returned. A payload rejected by any
// schema returns a *ValidationError. A sink failure returns a
// *StorageError. In all failure cases except the last the sink is never
// called, and the sink is called at most once.
func (l *Logger) LogEvent(ctx context.Context, typeIDs []string, data map[string]any, opts ...LogOption) (err error) {
	var cfg logConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	done := observability.TimedOperation()
	ctx, span := l.spans.StartLogSpan(ctx, typeIDs)

	var (
		closureSize int
		extent      Extent
	)
	defer func() {
		l.spans.EndSpanWithError(span, err)
		l.record(ctx, observability.EnrichLogger(l.logger, typeIDs), closureSize, extent.IsWide, done(), err)
	}()

	types, err := l.lookup(typeIDs)
	if err != nil {
		return err
	}

	closure := eventtype.Resolve(types)
	closureSize = closure.Len()
	l.spans.AddSpanEvent(ctx, observability.EventClosureResolved,
		attribute.StringSlice("event.closure", closure.IDs()))

	payload, err := Validate(closure, typeIDs, data)
	if err != nil {
		return err
	}
	l.spans.AddSpanEvent(ctx, observability.EventValidated)

	extent = cfg.when.Resolve(l.now)
	rec := &store.Record{
		SystemEventTypeIDs: closure.IDs(),
		Data:               payload,
		IsWide:             extent.IsWide,
		EventStartedAt:     extent.Start,
		EventEndedAt:       extent.End,
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.sink.Insert(ctx, rec); err != nil {
		return &StorageError{Record: rec, Err: err}
	}
	l.spans.AddSpanEvent(ctx, observability.EventPersisted)
	return nil
}

// lookup enforces the type-set precondition: every id must be a
// registered system type. All offenders are reported together.
func (l *Logger) lookup(typeIDs []string) ([]*eventtype.EventType, error) {
	if len(typeIDs) == 0 {
		return nil, &ConfigError{Err: ErrNoEventTypes}
	}

	var (
		types   = make([]*eventtype.EventType, 0, len(typeIDs))
		invalid []string
		errs    []error
	)
	for _, id := range typeIDs {
		if !eventtype.IsSystem(id) {
			invalid = append(invalid, id)
			errs = append(errs, fmt.Errorf("%w: %q", ErrCustomEventType, id))
			continue
		}
		t, ok := l.registry.Lookup(id)
		if !ok {
			invalid = append(invalid, id)
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownEventType, id))
			continue
		}
		types = append(types, t)
	}

	if len(errs) > 0 {
		return nil, &ConfigError{
			Requested: slices.Clone(typeIDs),
			Invalid:   invalid,
			Err:       errors.Join(errs...),
		}
	}
	return types, nil
}

func (l *Logger) record(ctx context.Context, logger *slog.Logger, closureSize int, isWide bool, durationMs float64, err error) {
	elapsed := time.Duration(durationMs * float64(time.Millisecond))
	if err == nil {
		l.metrics.RecordEventLogged(ctx, closureSize, isWide, elapsed)
		observability.LogEventLogged(logger, closureSize, isWide, durationMs)
		return
	}

	kind := KindOf(err)
	l.metrics.RecordEventFailed(ctx, kind.String(), elapsed)
	if kind == KindStorage {
		observability.LogSinkError(logger, err, durationMs)
		return
	}
	observability.LogEventRejected(logger, kind.String(), err)
}
