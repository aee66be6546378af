package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event logger metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventLogged records an event that reached the sink successfully.
	RecordEventLogged(ctx context.Context, closureSize int, isWide bool, duration time.Duration)

	// RecordEventFailed records an event that failed with the given error kind.
	RecordEventFailed(ctx context.Context, kind string, duration time.Duration)
}

type otelMetrics struct {
	eventsLogged metric.Int64Counter
	eventsFailed metric.Int64Counter
	closureSize  metric.Int64Histogram
	logLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	return newOtelMetricsFromMeter(otel.Meter("eventlog"))
}

func newOtelMetricsFromMeter(meter metric.Meter) (*otelMetrics, error) {

	eventsLogged, err := meter.Int64Counter("eventlog.events.logged",
		metric.WithDescription("Number of events persisted"),
	)
	if err != nil {
		return nil, err
	}

	eventsFailed, err := meter.Int64Counter("eventlog.events.failed",
		metric.WithDescription("Number of events that failed, by error kind"),
	)
	if err != nil {
		return nil, err
	}

	closureSize, err := meter.Int64Histogram("eventlog.closure.size",
		metric.WithDescription("Number of event types in the resolved closure"),
	)
	if err != nil {
		return nil, err
	}

	logLatency, err := meter.Float64Histogram("eventlog.log.latency_ms",
		metric.WithDescription("LogEvent latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsLogged: eventsLogged,
		eventsFailed: eventsFailed,
		closureSize:  closureSize,
		logLatency:   logLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithProvider returns a MetricsRecorder bound to mp
// instead of the global provider.
func NewMetricsRecorderWithProvider(mp metric.MeterProvider) (MetricsRecorder, error) {
	m, err := newOtelMetricsFromMeter(mp.Meter("eventlog"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) RecordEventLogged(ctx context.Context, closureSize int, isWide bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("is_wide", isWide))
	m.eventsLogged.Add(ctx, 1, attrs)
	m.closureSize.Record(ctx, int64(closureSize))
	m.logLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (m *otelMetrics) RecordEventFailed(ctx context.Context, kind string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.eventsFailed.Add(ctx, 1, attrs)
	m.logLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
