package criterion

import (
	"fmt"
	"sort"
	"sync"
)

// Builtin type identifiers.
const (
	TypeBasic    = "basic"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypePairs    = "pairs"
)

// Definition describes a criterion to build from a type identifier.
type Definition struct {
	Type   string
	Column string
	Pairs  []Pair
}

// Factory builds a criterion with the given id.
type Factory func(id string, def Definition) (Criterion, error)

// Registry resolves type identifiers to factories.
//
// Thread-safety: Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the builtin types.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(TypeBasic, func(id string, def Definition) (Criterion, error) {
		return NewBasic(id, WithColumnName(def.Column)), nil
	})
	r.Register(TypeBoolean, func(id string, def Definition) (Criterion, error) {
		return NewBoolean(id, WithColumnName(def.Column)), nil
	})
	r.Register(TypeDate, func(id string, def Definition) (Criterion, error) {
		return NewDate(id, WithColumnName(def.Column)), nil
	})
	r.Register(TypeDateTime, func(id string, def Definition) (Criterion, error) {
		return NewDateTime(id, WithColumnName(def.Column)), nil
	})
	r.Register(TypePairs, func(id string, def Definition) (Criterion, error) {
		if len(def.Pairs) == 0 {
			return nil, fmt.Errorf("pairs criterion %q has no pairs", id)
		}
		return NewPairs(id, def.Pairs, WithColumnName(def.Column)), nil
	})
	return r
}

// Register adds or replaces the factory for typ.
func (r *Registry) Register(typ string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = f
}

// Has reports whether typ is registered.
func (r *Registry) Has(typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typ]
	return ok
}

// Types returns the registered type identifiers, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// New builds the criterion id from def. An empty type means basic.
func (r *Registry) New(id string, def Definition) (Criterion, error) {
	if id == "" {
		return nil, fmt.Errorf("criterion id must not be empty")
	}

	typ := def.Type
	if typ == "" {
		typ = TypeBasic
	}

	r.mu.RLock()
	f, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("criterion %q: unknown type %q", id, typ)
	}
	return f(id, def)
}
