package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span event names emitted inside the log span.
const (
	EventClosureResolved = "closure.resolved"
	EventValidated       = "payload.validated"
	EventPersisted       = "record.persisted"
)

var tracer = otel.Tracer("eventlog")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartLogSpan starts a span covering one LogEvent call.
	StartLogSpan(ctx context.Context, typeIDs []string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager that uses the global OTel tracer
// provider. Configure the provider before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// NewSpanManagerWithProvider returns a SpanManager bound to tp instead of
// the global provider.
func NewSpanManagerWithProvider(tp trace.TracerProvider) SpanManager {
	return &otelSpanManager{tracer: tp.Tracer("eventlog")}
}

func (m *otelSpanManager) StartLogSpan(ctx context.Context, typeIDs []string) (context.Context, trace.Span) {
	if m.tracer == nil {
		return StartLogSpan(ctx, typeIDs)
	}
	return startLogSpan(ctx, m.tracer, typeIDs)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartLogSpan starts an "eventlog.log_event" span on the global tracer.
func StartLogSpan(ctx context.Context, typeIDs []string) (context.Context, trace.Span) {
	return startLogSpan(ctx, tracer, typeIDs)
}

func startLogSpan(ctx context.Context, t trace.Tracer, typeIDs []string) (context.Context, trace.Span) {
	return t.Start(ctx, "eventlog.log_event",
		trace.WithAttributes(
			attribute.StringSlice("event.types", typeIDs),
			attribute.Int("event.type_count", len(typeIDs)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
