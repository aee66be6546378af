// Package observability provides structured logging, metrics, and tracing
// for the event logger.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the requested event types to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, []string{"$user.signed_in"})
//	enriched.Info("validating") // includes event_types
func EnrichLogger(logger *slog.Logger, typeIDs []string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.Any("event_types", typeIDs))
}

// LogEventLogged logs a successfully persisted event.
// Pass a logger from EnrichLogger to include the event types.
func LogEventLogged(logger *slog.Logger, closureSize int, isWide bool, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event logged",
		slog.Int("closure_size", closureSize),
		slog.Bool("is_wide", isWide),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEventRejected logs an event refused before reaching the sink.
func LogEventRejected(logger *slog.Logger, kind string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event rejected",
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}

// LogSinkError logs a failed insert.
func LogSinkError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("event insert failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStoreOpened logs the store a logger writes to.
func LogStoreOpened(logger *slog.Logger, driver string) {
	if logger == nil {
		return
	}
	logger.Info("event store opened", slog.String("driver", driver))
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
