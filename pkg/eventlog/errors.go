package eventlog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
	"github.com/randalmurphal/eventlog/pkg/eventlog/store"
)

// Sentinel errors for the type-set precondition.
var (
	// ErrNoEventTypes indicates LogEvent was called with no event types.
	ErrNoEventTypes = errors.New("no event types requested")

	// ErrCustomEventType indicates a requested id is outside the system namespace.
	ErrCustomEventType = errors.New("event type is not a system event type")

	// ErrUnknownEventType indicates a requested id is not registered.
	ErrUnknownEventType = errors.New("event type not registered")
)

// Sentinel errors for logger construction.
var (
	// ErrNilRegistry indicates New was called without a registry.
	ErrNilRegistry = errors.New("registry cannot be nil")

	// ErrNilSink indicates New was called without a sink.
	ErrNilSink = errors.New("sink cannot be nil")
)

// ConfigError reports requested event types that failed the precondition
// check. Nothing was validated or persisted.
type ConfigError struct {
	// Requested is the type list the caller passed.
	Requested []string
	// Invalid lists every offending id, in request order.
	Invalid []string
	// Err joins one sentinel-wrapping error per offender.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if len(e.Invalid) == 0 {
		return fmt.Sprintf("invalid event types: %v", e.Err)
	}
	return fmt.Sprintf("invalid event types %v: %v", e.Invalid, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError reports the first schema in the closure that rejected
// the payload.
type ValidationError struct {
	// EventType is the id of the type whose schema failed.
	EventType string
	// Payload is the payload as that schema received it.
	Payload map[string]any
	// Original is a copy of the caller's payload.
	Original map[string]any
	// Requested is the type list the caller passed, before closure.
	Requested []string
	// Err is the schema error.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("event type %s rejected payload: %v", e.EventType, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Issues returns the individual schema issues, or nil when the underlying
// error is not a *schema.Error.
func (e *ValidationError) Issues() []schema.Issue {
	var se *schema.Error
	if errors.As(e.Err, &se) {
		return slices.Clone(se.Issues)
	}
	return nil
}

// StorageError wraps a sink failure. The record was fully validated.
type StorageError struct {
	// Record is the record the sink refused.
	Record *store.Record
	// Err is the sink error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("insert event record: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Kind classifies a LogEvent failure so callers can decide whether to fix
// code, fix input, or retry infrastructure.
type Kind int

const (
	// KindUnknown is any error this package did not classify, including
	// context cancellation.
	KindUnknown Kind = iota

	// KindConfig is a caller or registry bug. Not retryable.
	KindConfig

	// KindValidation is a payload rejected by a schema. Not retryable
	// without changing the payload.
	KindValidation

	// KindStorage is a sink failure. Retrying may help.
	KindStorage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Errors that are not one of this package's typed
// errors are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var (
		storageErr    *StorageError
		configErr     *ConfigError
		validationErr *ValidationError
	)
	switch {
	case errors.As(err, &storageErr):
		return KindStorage
	case errors.As(err, &configErr),
		errors.Is(err, ErrNilRegistry),
		errors.Is(err, ErrNilSink):
		return KindConfig
	case errors.As(err, &validationErr):
		return KindValidation
	default:
		return KindUnknown
	}
}
