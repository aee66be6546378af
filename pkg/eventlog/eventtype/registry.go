package eventtype

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

// Registry indexes event types by id. It is immutable once built and safe
// for concurrent reads.
type Registry struct {
	types   map[string]*EventType
	ids     []string
	version *semver.Version
}

type buildConfig struct {
	version *semver.Version
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithVersion stamps the registry with the catalog version it was built from.
func WithVersion(v *semver.Version) BuildOption {
	return func(c *buildConfig) {
		c.version = v
	}
}

// Build validates the definitions and links them into a registry.
// Returns an error if validation fails. Multiple errors are joined together.
//
// Validation checks (in order):
//  1. Every id is non-empty, unique and in the system namespace
//  2. Every parent id refers to a definition in the same list
//  3. The inheritance graph has no cycle
func Build(defs []Definition, opts ...BuildOption) (*Registry, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var errs []error
	index := make(map[string]int, len(defs))

	for i, d := range defs {
		if d.ID == "" {
			errs = append(errs, fmt.Errorf("%w: definition %d", ErrEmptyID, i))
			continue
		}
		if !IsSystem(d.ID) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNotSystemID, d.ID))
		}
		if _, dup := index[d.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID))
			continue
		}
		index[d.ID] = i
	}

	for _, d := range defs {
		for _, parent := range d.Inherits {
			if _, ok := index[parent]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s inherits %q", ErrUnknownParent, d.ID, parent))
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if path := findCycle(defs, index); path != nil {
		return nil, &CycleError{Path: path}
	}

	r := &Registry{
		types:   make(map[string]*EventType, len(defs)),
		ids:     make([]string, 0, len(defs)),
		version: cfg.version,
	}
	for _, d := range defs {
		s := d.Schema
		if s == nil {
			s = schema.Object()
		}
		r.types[d.ID] = &EventType{
			id:          d.ID,
			description: d.Description,
			schema:      s,
		}
		r.ids = append(r.ids, d.ID)
	}
	for _, d := range defs {
		t := r.types[d.ID]
		t.inherits = make([]*EventType, 0, len(d.Inherits))
		for _, parent := range d.Inherits {
			t.inherits = append(t.inherits, r.types[parent])
		}
	}

	return r, nil
}

// MustBuild is like Build but panics on error.
// Intended for static catalogs built at package initialisation.
func MustBuild(defs []Definition, opts ...BuildOption) *Registry {
	r, err := Build(defs, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build event type registry: %v", err))
	}
	return r
}

// findCycle runs a depth-first search over the parent edges and returns the
// first cycle found, or nil.
func findCycle(defs []Definition, index map[string]int) []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make([]int, len(defs))
	var stack []string

	var visit func(i int) []string
	visit = func(i int) []string {
		state[i] = inProgress
		stack = append(stack, defs[i].ID)
		for _, parent := range defs[i].Inherits {
			j := index[parent]
			switch state[j] {
			case inProgress:
				start := slices.Index(stack, parent)
				return append(slices.Clone(stack[start:]), parent)
			case unvisited:
				if path := visit(j); path != nil {
					return path
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = done
		return nil
	}

	for i := range defs {
		if state[i] == unvisited {
			if path := visit(i); path != nil {
				return path
			}
		}
	}
	return nil
}

// Lookup returns the event type registered under id.
func (r *Registry) Lookup(id string) (*EventType, bool) {
	t, ok := r.types[id]
	return t, ok
}

// MustLookup returns the event type registered under id, panicking if absent.
func (r *Registry) MustLookup(id string) *EventType {
	t, ok := r.types[id]
	if !ok {
		panic(fmt.Sprintf("eventtype: %s not registered", id))
	}
	return t
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.types[id]
	return ok
}

// IDs returns all registered ids in definition order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Version returns the catalog version, or nil if the registry is unversioned.
func (r *Registry) Version() *semver.Version {
	return r.version
}

// CheckVersion verifies the catalog version satisfies a semver constraint
// such as ">= 1.2, < 2".
func (r *Registry) CheckVersion(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("parse version constraint %q: %w", constraint, err)
	}
	if r.version == nil {
		return fmt.Errorf("%w: catalog is unversioned, want %s", ErrVersionMismatch, constraint)
	}
	if !c.Check(r.version) {
		return fmt.Errorf("%w: catalog %s does not satisfy %s", ErrVersionMismatch, r.version, constraint)
	}
	return nil
}

// Resolve looks up ids and returns their closure.
func (r *Registry) Resolve(ids ...string) (Closure, error) {
	requested := make([]*EventType, 0, len(ids))
	for _, id := range ids {
		t, ok := r.types[id]
		if !ok {
			return Closure{}, fmt.Errorf("%w: %s", ErrUnknownType, id)
		}
		requested = append(requested, t)
	}
	return Resolve(requested), nil
}
