package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facets/internal/queryir"
	"github.com/roach88/facets/internal/store"
)

func openPeople(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(store.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Exec(context.Background(), `
		CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, is_online INTEGER);
		INSERT INTO people (id, name, is_online) VALUES
			(1, 'ann', 1), (2, 'bob', 0), (3, 'cid', 1), (4, 'dee', 1);
	`)
	require.NoError(t, err)
	return s
}

func TestQuery_BuildsSQL(t *testing.T) {
	q := New(nil, "people").Key("id")
	q.And(queryir.Equals{Field: "is_online", Value: true}).
		Order("name", true).
		Limit(10, 5)

	sql, args, err := q.SQL()
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "people" WHERE "is_online" = ? ORDER BY "name" DESC, "id" ASC LIMIT 5 OFFSET 10`, sql)
	assert.Equal(t, []any{true}, args)
	assert.Equal(t, []any{true}, q.Args())
}

func TestQuery_Where(t *testing.T) {
	q := New(nil, "people").Where("age > ?", 30)

	require.Len(t, q.Conditions(), 1)
	assert.Equal(t, queryir.Raw{SQL: "age > ?", Args: []any{30}}, q.Conditions()[0])
}

func TestQuery_Limit(t *testing.T) {
	testCases := []struct {
		name       string
		offset     int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{"window", 20, 10, 20, 10},
		{"no limit clears offset", 20, 0, 0, 0},
		{"negative offset", -5, 10, 0, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := New(nil, "t").Limit(tc.offset, tc.limit).Window()
			assert.Equal(t, tc.wantOffset, offset)
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}

func TestQuery_CloneIsIndependent(t *testing.T) {
	q := New(nil, "people").And(queryir.Equals{Field: "a", Value: 1})
	c := q.Clone()
	c.And(queryir.Equals{Field: "b", Value: 2}).Order("a", false)

	assert.Len(t, q.Conditions(), 1)
	assert.Empty(t, q.Orders())
	assert.Len(t, c.Conditions(), 2)
	assert.Equal(t, "people", c.Table())
}

func TestQuery_CountIgnoresLimit(t *testing.T) {
	s := openPeople(t)
	ctx := context.Background()

	q := New(s, "people").Key("id").And(queryir.Equals{Field: "is_online", Value: true}).Limit(0, 2)

	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := q.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ann", records[0]["name"])
	assert.Equal(t, "cid", records[1]["name"])
}

func TestQuery_AllWithInList(t *testing.T) {
	s := openPeople(t)

	records, err := New(s, "people").
		Key("id").
		And(queryir.In{Field: "name", Values: []any{"bob", "dee"}}).
		All(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "bob", records[0]["name"])
	assert.Equal(t, "dee", records[1]["name"])
}

func TestQuery_NoRunner(t *testing.T) {
	q := New(nil, "people")

	_, err := q.Count(context.Background())
	assert.Error(t, err)

	_, err = q.All(context.Background())
	assert.Error(t, err)
}
