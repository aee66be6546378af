package eventtype

import "slices"

// Closure is the deduplicated set of requested types plus all of their
// ancestors, in the order the depth-first walk first reached them.
type Closure struct {
	types []*EventType
}

// Resolve computes the closure of the requested types.
//
// The walk is depth-first and pre-order: a type is recorded, then each of
// its parents is visited in declared order. A type reached again through
// another path (a diamond) or requested twice is recorded once.
func Resolve(requested []*EventType) Closure {
	visited := make(map[*EventType]bool)
	var types []*EventType

	var visit func(t *EventType)
	visit = func(t *EventType) {
		if t == nil || visited[t] {
			return
		}
		visited[t] = true
		types = append(types, t)
		for _, parent := range t.inherits {
			visit(parent)
		}
	}

	for _, t := range requested {
		visit(t)
	}
	return Closure{types: types}
}

// Types returns the closure's types in walk order.
func (c Closure) Types() []*EventType {
	return slices.Clone(c.types)
}

// IDs returns the closure's type ids in walk order.
func (c Closure) IDs() []string {
	ids := make([]string, len(c.types))
	for i, t := range c.types {
		ids[i] = t.id
	}
	return ids
}

// Len returns the number of types in the closure.
func (c Closure) Len() int {
	return len(c.types)
}

// Contains reports whether the closure includes the type with the given id.
func (c Closure) Contains(id string) bool {
	for _, t := range c.types {
		if t.id == id {
			return true
		}
	}
	return false
}
