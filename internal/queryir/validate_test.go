package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PortableQuery(t *testing.T) {
	query := Select{
		From: "people",
		Filter: []Predicate{
			Equals{Field: "is_online", Value: true},
			Between{Field: "age", Min: 18, Max: 30},
			Compare{Field: "score", Op: OpGreaterOrEqual, Value: 3},
			DateEquals{Field: "created", Part: PartDate, Value: "2024-01-02"},
			And{Predicates: []Predicate{
				DateEquals{Field: "created", Part: PartYear, Value: 2024},
				DateEquals{Field: "created", Part: PartMonth, Value: 1},
			}},
		},
		OrderBy: []Order{{Field: "name"}},
		Limit:   10,
	}

	result := Validate(query)

	assert.True(t, result.IsPortable, "typed predicates should be portable")
	assert.Empty(t, result.Warnings)
}

func TestValidate_Problems(t *testing.T) {
	testCases := []struct {
		name    string
		query   Select
		warning string
	}{
		{
			name:    "missing table",
			query:   Select{},
			warning: "Select has no table",
		},
		{
			name:    "empty field",
			query:   Select{From: "t", Filter: []Predicate{Equals{Value: 1}}},
			warning: "Equals predicate has an empty field",
		},
		{
			name:    "empty IN list",
			query:   Select{From: "t", Filter: []Predicate{In{Field: "a"}}},
			warning: "empty IN list",
		},
		{
			name:    "unknown operator",
			query:   Select{From: "t", Filter: []Predicate{Compare{Field: "a", Op: "~", Value: 1}}},
			warning: "unknown operator",
		},
		{
			name:    "unknown date part",
			query:   Select{From: "t", Filter: []Predicate{DateEquals{Field: "a", Part: "week", Value: 1}}},
			warning: "unknown date part",
		},
		{
			name:    "raw sql",
			query:   Select{From: "t", Filter: []Predicate{Raw{SQL: "a = ?"}}},
			warning: "not portable",
		},
		{
			name:    "nested nil",
			query:   Select{From: "t", Filter: []Predicate{And{Predicates: []Predicate{nil}}}},
			warning: "nil predicate",
		},
		{
			name:    "negative limit",
			query:   Select{From: "t", Limit: -1},
			warning: "negative limit",
		},
		{
			name:    "empty order field",
			query:   Select{From: "t", OrderBy: []Order{{}}},
			warning: "ORDER BY term has an empty field",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.query)

			assert.False(t, result.IsPortable)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], tc.warning)
		})
	}
}
