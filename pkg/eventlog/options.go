package eventlog

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/eventlog/pkg/eventlog/observability"
)

// loggerConfig holds Logger construction settings.
type loggerConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	now     func() time.Time
}

func defaultLoggerConfig() loggerConfig {
	return loggerConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		now:     time.Now,
	}
}

// Option configures a Logger.
type Option func(*loggerConfig)

// WithLogger sets the structured logger. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *loggerConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics on the global meter provider.
// Default: disabled.
//
// Metrics: eventlog.events.logged, eventlog.events.failed,
// eventlog.closure.size, eventlog.log.latency_ms.
func WithMetrics(enabled bool) Option {
	return func(c *loggerConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *loggerConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry tracing on the global tracer provider.
// Default: disabled.
func WithTracing(enabled bool) Option {
	return func(c *loggerConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(c *loggerConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithClock sets the time source used for events logged without WithTime.
// Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *loggerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// logConfig holds per-call settings.
type logConfig struct {
	when When
}

// LogOption configures a single LogEvent call.
type LogOption func(*logConfig)

// WithTime sets when the event happened. Default: the logger's clock at
// the time of the call.
//
// Example:
//
//	err := l.LogEvent(ctx, ids, data, eventlog.WithTime(eventlog.Between(start, end)))
func WithTime(w When) LogOption {
	return func(c *logConfig) {
		c.when = w
	}
}
