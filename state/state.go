// Package state implements the per-program state registry spec.md §4.6
// describes: the sanctioned channel between the checker and external
// decorators. Libraries get a process-unique Key (backed by a uuid) at
// load time, then use it to reach a lazily-materialized Map or Set scoped
// to one program - never global, so two compilations never see each
// other's state (spec.md "Process-wide state" open question, resolved in
// SPEC_FULL.md by making state explicitly program-scoped).
package state

import "github.com/google/uuid"

// Key is an opaque, process-unique token a library uses to address its
// slice of the registry. Libraries obtain one via NewKey once, at package
// init or load time, and reuse it across every program the library
// participates in.
type Key struct {
	id uuid.UUID
}

// NewKey mints a fresh opaque key.
func NewKey() Key { return Key{id: uuid.New()} }

// Registry holds exactly two flat maps (spec.md §4.6: "state_map(key) →
// Map" and "state_set(key) → Set"), materializing each library's Map/Set
// only on first access.
type Registry struct {
	maps map[Key]map[any]any
	sets map[Key]map[any]struct{}
}

// NewRegistry creates an empty, program-scoped registry.
func NewRegistry() *Registry {
	return &Registry{
		maps: make(map[Key]map[any]any),
		sets: make(map[Key]map[any]struct{}),
	}
}

// Map returns key's Map, creating an empty one on first access.
func (r *Registry) Map(key Key) map[any]any {
	m, ok := r.maps[key]
	if !ok {
		m = make(map[any]any)
		r.maps[key] = m
	}
	return m
}

// Set returns key's Set, creating an empty one on first access. The set
// is modeled as a map[any]struct{}; use Add/Has below rather than
// manipulating it directly so call sites read clearly.
func (r *Registry) Set(key Key) map[any]struct{} {
	s, ok := r.sets[key]
	if !ok {
		s = make(map[any]struct{})
		r.sets[key] = s
	}
	return s
}

// Add inserts value into key's set.
func (r *Registry) Add(key Key, value any) {
	r.Set(key)[value] = struct{}{}
}

// Has reports whether value is in key's set.
func (r *Registry) Has(key Key, value any) bool {
	_, ok := r.Set(key)[value]
	return ok
}
