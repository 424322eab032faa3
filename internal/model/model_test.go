package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facets/internal/criterion"
)

func nodesAndPeople() (*Catalog, *Model, *Model) {
	nodes := &Model{ID: "nodes", Table: "nodes", Key: "nid"}
	people := &Model{ID: "people", Table: "people", Key: "id", Parent: nodes}

	c := NewCatalog()
	c.AddModel(nodes)
	c.AddModel(people)
	c.SetFacets("nodes", []criterion.Entry{
		{ID: "created", Definition: criterion.Definition{Type: criterion.TypeDate}},
		{ID: "title", Definition: criterion.Definition{Type: criterion.TypeBasic}},
	})
	c.SetFacets("people", []criterion.Entry{
		{ID: "online", Definition: criterion.Definition{Type: criterion.TypeBoolean, Column: "is_online"}},
		{ID: "title", Definition: criterion.Definition{Type: criterion.TypeBasic, Column: "job_title"}},
	})
	return c, nodes, people
}

func TestModel_NewQuery(t *testing.T) {
	m := &Model{ID: "people", Table: "persons", Key: "id"}

	sql, _, err := m.NewQuery(nil).SQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "persons" ORDER BY "id" ASC`, sql)

	sql, _, err = (&Model{ID: "people"}).NewQuery(nil).SQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "people"`, sql)
}

func TestModel_Lineage(t *testing.T) {
	_, nodes, people := nodesAndPeople()

	assert.Equal(t, []*Model{nodes, people}, people.Lineage())
	assert.Equal(t, []*Model{nodes}, nodes.Lineage())
}

func TestModel_LineageStopsOnCycle(t *testing.T) {
	a := &Model{ID: "a"}
	b := &Model{ID: "b", Parent: a}
	a.Parent = b

	assert.Len(t, b.Lineage(), 2)
}

func TestCatalog_CriteriaForFlattensParents(t *testing.T) {
	c, nodes, people := nodesAndPeople()

	entries := c.CriteriaFor(people)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"created", "title", "online"}, ids)
	assert.Equal(t, "job_title", entries[1].Definition.Column, "child overrides ancestor in place")

	assert.Len(t, c.CriteriaFor(nodes), 2)
}

func TestCatalog_Model(t *testing.T) {
	c, _, people := nodesAndPeople()

	m, err := c.Model("people")
	require.NoError(t, err)
	assert.Same(t, people, m)

	_, err = c.Model("missing")
	assert.Error(t, err)

	assert.Len(t, c.Models(), 2)
}

func TestListCache_Memoizes(t *testing.T) {
	c, _, people := nodesAndPeople()
	cache := NewListCache(c, nil)

	l1, err := cache.For(people)
	require.NoError(t, err)
	l2, err := cache.For(people)
	require.NoError(t, err)

	assert.Same(t, l1, l2)
	assert.Equal(t, []string{"created", "title", "online"}, l1.IDs())

	title, err := l1.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "job_title", title.ColumnName())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())

	l3, err := cache.For(people)
	require.NoError(t, err)
	assert.NotSame(t, l1, l3)
}

func TestListCache_Error(t *testing.T) {
	c := NewCatalog()
	m := &Model{ID: "broken"}
	c.AddModel(m)
	c.SetFacets("broken", []criterion.Entry{{ID: "x", Definition: criterion.Definition{Type: "geo"}}})

	_, err := NewListCache(c, nil).For(m)
	assert.Error(t, err)
}

func TestListCache_ConcurrentAccess(t *testing.T) {
	c, _, people := nodesAndPeople()
	cache := NewListCache(c, nil)

	var wg sync.WaitGroup
	lists := make([]*criterion.List, 16)
	for i := range lists {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := cache.For(people)
			if err == nil {
				lists[i] = l
			}
		}(i)
	}
	wg.Wait()

	for _, l := range lists {
		assert.Same(t, lists[0], l)
	}
	assert.Equal(t, 1, cache.Len())
}
