// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/facets/internal/criterion"
	"github.com/roach88/facets/internal/model"
	"github.com/roach88/facets/internal/store"
)

// PeopleCount is the number of rows OpenPeople seeds.
const PeopleCount = 25

// PeopleOnline is the number of seeded rows with is_online = 1.
const PeopleOnline = 13

var peopleNames = []string{
	"ann", "bob", "cid", "dee", "eve", "fay", "gus", "hal", "ivy", "jon",
	"kim", "lea", "max", "ned", "ola", "pam", "quinn", "ray", "sue", "tom",
	"uma", "vic", "wes", "xia", "yan",
}

// PeopleSchema creates the people table.
const PeopleSchema = `CREATE TABLE people (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	is_online INTEGER NOT NULL,
	gender TEXT NOT NULL,
	age INTEGER NOT NULL,
	created TEXT NOT NULL
)`

// OpenPeople opens an in-memory SQLite store seeded by SeedPeople.
func OpenPeople(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(store.Config{Driver: store.DriverSQLite3})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	SeedPeople(t, s)
	return s
}

// PeopleDB creates a seeded SQLite database file in a temporary directory
// and returns its path.
func PeopleDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "people.db")
	s, err := store.Open(store.Config{Driver: store.DriverSQLite3, DSN: path})
	require.NoError(t, err)
	defer s.Close()

	SeedPeople(t, s)
	return path
}

// SeedPeople creates the people table in s and inserts PeopleCount rows:
//
//	id       1..25
//	name     ann, bob, ... yan (alphabetical by id)
//	online   odd ids
//	gender   "m" when id is a multiple of 3, else "f"
//	age      20 + id
//	created  2024-MM-DD with MM = (id-1)%12+1 and DD = id
func SeedPeople(t *testing.T, s *store.Store) {
	t.Helper()

	ctx := context.Background()
	_, err := s.Exec(ctx, PeopleSchema)
	require.NoError(t, err)

	for id := 1; id <= PeopleCount; id++ {
		gender := "f"
		if id%3 == 0 {
			gender = "m"
		}
		_, err := s.Exec(ctx,
			"INSERT INTO people (id, name, is_online, gender, age, created) VALUES (?, ?, ?, ?, ?, ?)",
			id, peopleNames[id-1], id%2, gender, 20+id, fmt.Sprintf("2024-%02d-%02d", (id-1)%12+1, id),
		)
		require.NoError(t, err)
	}
}

// PeopleModel returns the people model.
func PeopleModel() *model.Model {
	return &model.Model{ID: "people", Table: "people", Key: "id"}
}

// PeopleList returns the criteria of the people model:
//
//	online   boolean on is_online
//	name     basic
//	gender   pairs f/female, m/male
//	age      basic
//	created  date
func PeopleList() *criterion.List {
	return criterion.Of(
		criterion.NewBoolean("online", criterion.WithColumnName("is_online")),
		criterion.NewBasic("name"),
		criterion.NewPairs("gender", []criterion.Pair{
			{Value: "f", Label: "female"},
			{Value: "m", Label: "male"},
		}),
		criterion.NewBasic("age"),
		criterion.NewDate("created"),
	)
}
