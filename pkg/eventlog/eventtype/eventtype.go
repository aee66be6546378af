// Package eventtype defines event types, the registry that indexes them and
// the closure walk over their inheritance graph.
//
// Event types form a directed acyclic graph: a type may inherit from any
// number of parents, and a type reachable through two paths is still a
// single node. The registry is built once from a fixed list of definitions
// and is read-only afterwards, so lookups need no locking.
package eventtype

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

// SystemPrefix marks identifiers in the reserved system namespace.
const SystemPrefix = "$"

// IsSystem reports whether id belongs to the system namespace.
func IsSystem(id string) bool {
	return len(id) > len(SystemPrefix) && strings.HasPrefix(id, SystemPrefix)
}

// IsCustom reports whether id belongs to the custom namespace.
// Custom event types are reserved for future use and cannot be registered.
func IsCustom(id string) bool {
	return id != "" && !strings.HasPrefix(id, SystemPrefix)
}

// Definition declares an event type. Parents are referenced by id.
type Definition struct {
	// ID is the event type identifier, e.g. "$user.signed_in".
	ID string

	// Description explains when the event is logged.
	Description string

	// Schema validates the data this type requires.
	// Nil means the type adds no fields of its own.
	Schema schema.Schema

	// Inherits lists parent type ids in the order their schemas apply.
	Inherits []string
}

// EventType is a registered, immutable event type.
type EventType struct {
	id          string
	description string
	schema      schema.Schema
	inherits    []*EventType
}

// ID returns the event type identifier.
func (t *EventType) ID() string { return t.id }

// Description returns the human-readable description.
func (t *EventType) Description() string { return t.description }

// Schema returns the data schema.
func (t *EventType) Schema() schema.Schema { return t.schema }

// Inherits returns the direct parents in declared order.
func (t *EventType) Inherits() []*EventType {
	return slices.Clone(t.inherits)
}

// String returns the id.
func (t *EventType) String() string { return t.id }

// Sentinel errors for registry construction and lookup.
var (
	// ErrEmptyID indicates a definition without an id.
	ErrEmptyID = errors.New("event type id is required")

	// ErrDuplicateID indicates two definitions share an id.
	ErrDuplicateID = errors.New("duplicate event type id")

	// ErrNotSystemID indicates a definition outside the system namespace.
	ErrNotSystemID = errors.New("event type id is outside the system namespace")

	// ErrUnknownParent indicates an inherits entry naming an unregistered type.
	ErrUnknownParent = errors.New("unknown parent event type")

	// ErrCycle indicates the inheritance graph is not acyclic.
	ErrCycle = errors.New("event type inheritance cycle")

	// ErrUnknownType indicates a lookup for an unregistered id.
	ErrUnknownType = errors.New("unknown event type")

	// ErrVersionMismatch indicates the catalog version fails a constraint.
	ErrVersionMismatch = errors.New("event type catalog version mismatch")
)

// CycleError reports an inheritance cycle found while building a registry.
type CycleError struct {
	// Path lists the ids along the cycle; the first id is repeated at the end.
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

// Unwrap returns ErrCycle for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}
