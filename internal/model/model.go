// Package model describes the record sources facets are declared on.
//
// A Model names a table and its primary key, and may inherit the criteria
// of a parent model. A Catalog holds the models and their criteria
// definitions; a ListCache memoizes the resolved criterion.List per model.
package model

import (
	"github.com/roach88/facets/internal/query"
)

// Model is a record source.
type Model struct {
	ID     string
	Table  string
	Key    string
	Parent *Model
}

// NewQuery returns an empty query over the model's table, ordered by its key
// as a final tiebreaker.
func (m *Model) NewQuery(runner query.Runner) *query.Query {
	table := m.Table
	if table == "" {
		table = m.ID
	}
	return query.New(runner, table).Key(m.Key)
}

// Lineage returns the model and its ancestors, root first. A parent cycle
// stops at the first repeated model.
func (m *Model) Lineage() []*Model {
	var chain []*Model
	seen := make(map[*Model]bool)
	for cur := m; cur != nil && !seen[cur]; cur = cur.Parent {
		seen[cur] = true
		chain = append(chain, cur)
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
