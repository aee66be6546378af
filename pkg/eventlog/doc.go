/*
Package eventlog validates and records system events whose types form a
multiple-inheritance hierarchy.

# Overview

Every event type declares a data schema and zero or more parent types. Logging
an event of some type means its payload must satisfy the schema of that type
and of every ancestor. The set of types reachable from the requested ones is
the closure; it is walked depth-first, parents in declared order, and each
type appears once even when it is reachable along several paths.

The persisted record carries the full closure, so "did a $user event happen"
is a single lookup rather than a walk of the hierarchy.

# Basic Usage

	reg := systemtypes.Registry()
	s := store.NewMemoryStore()

	l, err := eventlog.New(reg, s)
	if err != nil {
	    log.Fatal(err)
	}

	err = l.LogEvent(ctx,
	    []string{systemtypes.UserSignedIn},
	    map[string]any{"projectId": "p1", "userId": "u1", "method": "oauth"},
	)

# Validation

Schemas run one after another in closure order. Each sees the output of the
previous one, so defaults filled by one schema are visible to the next.
Validation is strict: values are never coerced, and keys no schema declares
are passed through untouched. The first rejection stops the pipeline.

# Time

Without WithTime an event is a point at the logger's clock. At(t) is a point
at t. Between(start, end) is an interval and the record is marked wide even
when start equals end: wideness records that the caller asked for a range.

# Errors

Failures are typed so callers can react to the cause:

  - *ConfigError: a requested id is custom or unregistered (fix the caller)
  - *ValidationError: a schema rejected the payload (fix the data)
  - *StorageError: the sink failed (retry may help)

KindOf maps an error to its Kind. Anything else, such as a cancelled context,
is KindUnknown. The sink is never called unless every check passed.

# Observability

	l, err := eventlog.New(reg, s,
	    eventlog.WithLogger(slog.Default()),
	    eventlog.WithMetrics(true),
	    eventlog.WithTracing(true),
	)

Each LogEvent call runs in an "eventlog.log_event" span with closure,
validation, and persistence span events.
*/
package eventlog
