package model

import (
	"fmt"
	"sync"

	"github.com/roach88/facets/internal/criterion"
)

// Catalog holds models and the criteria declared on each.
type Catalog struct {
	order  []string
	models map[string]*Model
	facets map[string][]criterion.Entry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		models: make(map[string]*Model),
		facets: make(map[string][]criterion.Entry),
	}
}

// AddModel registers m, replacing any model with the same id.
func (c *Catalog) AddModel(m *Model) {
	if _, ok := c.models[m.ID]; !ok {
		c.order = append(c.order, m.ID)
	}
	c.models[m.ID] = m
}

// Model returns the model id.
func (c *Catalog) Model(id string) (*Model, error) {
	m, ok := c.models[id]
	if !ok {
		return nil, fmt.Errorf("model not defined: %q", id)
	}
	return m, nil
}

// Models returns every model in registration order.
func (c *Catalog) Models() []*Model {
	out := make([]*Model, len(c.order))
	for i, id := range c.order {
		out[i] = c.models[id]
	}
	return out
}

// SetFacets declares the criteria of a model, in order.
func (c *Catalog) SetFacets(modelID string, entries []criterion.Entry) {
	c.facets[modelID] = append([]criterion.Entry(nil), entries...)
}

// Facets returns the criteria declared directly on a model.
func (c *Catalog) Facets(modelID string) []criterion.Entry {
	return append([]criterion.Entry(nil), c.facets[modelID]...)
}

// CriteriaFor flattens the criteria of m and its ancestors, root first. An
// entry of a descendant replaces the ancestor entry with the same id in
// place; new ids are appended.
func (c *Catalog) CriteriaFor(m *Model) []criterion.Entry {
	var entries []criterion.Entry
	index := make(map[string]int)

	for _, ancestor := range m.Lineage() {
		for _, e := range c.facets[ancestor.ID] {
			id := entryID(e)
			if i, ok := index[id]; ok {
				entries[i] = e
				continue
			}
			index[id] = len(entries)
			entries = append(entries, e)
		}
	}
	return entries
}

func entryID(e criterion.Entry) string {
	if e.Criterion != nil {
		return e.Criterion.ID()
	}
	return e.ID
}

// ListCache memoizes the criterion list of each model. Lists are built on
// first use and never evicted.
//
// Thread-safety: ListCache is safe for concurrent use. The lists it returns
// are shared; clone one before mutating it.
type ListCache struct {
	mu       sync.Mutex
	catalog  *Catalog
	registry *criterion.Registry
	lists    map[string]*criterion.List
}

// NewListCache creates a cache resolving definitions through registry.
// A nil registry uses the builtin criterion types.
func NewListCache(catalog *Catalog, registry *criterion.Registry) *ListCache {
	if registry == nil {
		registry = criterion.NewRegistry()
	}
	return &ListCache{
		catalog:  catalog,
		registry: registry,
		lists:    make(map[string]*criterion.List),
	}
}

// For returns the criterion list of m, building it on first use.
func (c *ListCache) For(m *Model) (*criterion.List, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.lists[m.ID]; ok {
		return l, nil
	}

	l, err := criterion.NewListFromRegistry(c.registry, c.catalog.CriteriaFor(m)...)
	if err != nil {
		return nil, fmt.Errorf("criteria of model %s: %w", m.ID, err)
	}
	c.lists[m.ID] = l
	return l, nil
}

// Len returns the number of cached lists.
func (c *ListCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lists)
}

// Reset drops every cached list.
func (c *ListCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[string]*criterion.List)
}
