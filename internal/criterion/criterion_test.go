package criterion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facets/internal/query"
	"github.com/roach88/facets/internal/queryir"
	"github.com/roach88/facets/internal/querystring"
	"github.com/roach88/facets/internal/value"
)

func newQuery() *query.Query {
	return query.New(nil, "people")
}

func TestBasic_ColumnNameDefaultsToID(t *testing.T) {
	assert.Equal(t, "name", NewBasic("name").ColumnName())
	assert.Equal(t, "name", NewBasic("name", WithColumnName("")).ColumnName())
	assert.Equal(t, "full_name", NewBasic("name", WithColumnName("full_name")).ColumnName())
}

func TestBasic_AlterConditions(t *testing.T) {
	c := NewBasic("name")

	testCases := []struct {
		name      string
		modifiers map[string]any
		want      map[string]any
	}{
		{"sets value", map[string]any{"name": "ann"}, map[string]any{"name": "ann", "other": 1}},
		{"absent removes", map[string]any{}, map[string]any{"other": 1}},
		{"empty string removes", map[string]any{"name": ""}, map[string]any{"other": 1}},
		{"nil removes", map[string]any{"name": nil}, map[string]any{"other": 1}},
		{"zero is kept", map[string]any{"name": 0}, map[string]any{"name": 0, "other": 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conditions := map[string]any{"name": "previous", "other": 1}
			c.AlterConditions(conditions, tc.modifiers)
			assert.Equal(t, tc.want, conditions)
		})
	}
}

func TestBasic_AlterQueryWithValue(t *testing.T) {
	c := NewBasic("age", WithColumnName("years"))

	testCases := []struct {
		name string
		raw  any
		want []queryir.Predicate
	}{
		{"scalar", "30", []queryir.Predicate{queryir.Equals{Field: "years", Value: "30"}}},
		{"set", "30|40", []queryir.Predicate{queryir.In{Field: "years", Values: []any{"30", "40"}}}},
		{"interval", "30..40", []queryir.Predicate{queryir.Between{Field: "years", Min: "30", Max: "40"}}},
		{"open min", "..40", []queryir.Predicate{queryir.Compare{Field: "years", Op: "<=", Value: "40"}}},
		{"open max", "30..", []queryir.Predicate{queryir.Compare{Field: "years", Op: ">=", Value: "30"}}},
		{"collapsed interval", "30..30", []queryir.Predicate{queryir.Equals{Field: "years", Value: "30"}}},
		{"empty", "", nil},
		{"bare separator", "|", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := c.AlterQueryWithValue(newQuery(), c.ParseValue(tc.raw))
			assert.Equal(t, tc.want, q.Conditions())
		})
	}
}

func TestBasic_AlterQueryWithOrder(t *testing.T) {
	c := NewBasic("name")

	assert.Equal(t, []queryir.Order{{Field: "name", Desc: false}}, c.AlterQueryWithOrder(newQuery(), 1).Orders())
	assert.Equal(t, []queryir.Order{{Field: "name", Desc: false}}, c.AlterQueryWithOrder(newQuery(), 0).Orders())
	assert.Equal(t, []queryir.Order{{Field: "name", Desc: true}}, c.AlterQueryWithOrder(newQuery(), -1).Orders())
}

func TestBasic_Humanize(t *testing.T) {
	c := NewBasic("age")

	assert.Equal(t, "18 – 30", c.FormatHumanizedValue(c.Humanize(c.ParseValue("18..30"))))
	assert.Equal(t, "ann", c.FormatHumanizedValue(c.Humanize(c.ParseValue(" ann "))))
	assert.Equal(t, "a|b", c.FormatHumanizedValue(c.Humanize(c.ParseValue("a|b"))))
	assert.Equal(t, "a, b", c.FormatHumanizedValue([]string{"a", "b"}))
	assert.Equal(t, "", c.FormatHumanizedValue(nil))
}

func TestBoolean_ParseValue(t *testing.T) {
	c := NewBoolean("online")

	truthy := []any{"1", "yes", "YES", "true", "True", "on", " on ", true, 1, int64(1), float64(1)}
	for _, raw := range truthy {
		assert.Equal(t, true, c.ParseValue(raw), "ParseValue(%#v)", raw)
	}

	falsy := []any{"", "0", "no", "false", "off", "maybe", false, 0, 2, nil}
	for _, raw := range falsy {
		assert.Equal(t, false, c.ParseValue(raw), "ParseValue(%#v)", raw)
	}
}

func TestBoolean_ParseQueryString(t *testing.T) {
	c := NewBoolean("online")
	q := querystring.New("ann ONLINE now")

	c.ParseQueryString(q)

	require.Len(t, q.Matched(), 1)
	assert.Equal(t, "ONLINE", q.Matched()[0].Text())
	assert.Equal(t, map[string]any{"online": true}, q.Conditions())
	assert.Equal(t, "ann now", q.Remains())
}

func TestBoolean_AlterQueryWithValue(t *testing.T) {
	c := NewBoolean("online", WithColumnName("is_online"))

	q := c.AlterQueryWithValue(newQuery(), c.ParseValue("yes"))
	assert.Equal(t, []queryir.Predicate{queryir.Equals{Field: "is_online", Value: true}}, q.Conditions())

	q = c.AlterQueryWithValue(newQuery(), c.ParseValue("no"))
	assert.Equal(t, []queryir.Predicate{queryir.Equals{Field: "is_online", Value: false}}, q.Conditions())
}

func TestBoolean_Humanize(t *testing.T) {
	c := NewBoolean("online")

	assert.Equal(t, "yes", c.Humanize(true))
	assert.Nil(t, c.Humanize(false))
}

func TestDate_AlterQueryWithValue(t *testing.T) {
	c := NewDate("created")

	testCases := []struct {
		name   string
		raw    any
		want   []queryir.Predicate
		params int
	}{
		{
			name: "full date",
			raw:  "2024-01-02",
			want: []queryir.Predicate{
				queryir.DateEquals{Field: "created", Part: queryir.PartDate, Value: "2024-01-02"},
			},
			params: 1,
		},
		{
			name: "unpadded date",
			raw:  "2024-1-2",
			want: []queryir.Predicate{
				queryir.DateEquals{Field: "created", Part: queryir.PartDate, Value: "2024-01-02"},
			},
			params: 1,
		},
		{
			name: "year and month",
			raw:  "2024-03",
			want: []queryir.Predicate{queryir.And{Predicates: []queryir.Predicate{
				queryir.DateEquals{Field: "created", Part: queryir.PartYear, Value: 2024},
				queryir.DateEquals{Field: "created", Part: queryir.PartMonth, Value: 3},
			}}},
			params: 2,
		},
		{
			name: "year",
			raw:  "2024",
			want: []queryir.Predicate{
				queryir.DateEquals{Field: "created", Part: queryir.PartYear, Value: 2024},
			},
			params: 1,
		},
		{name: "empty", raw: ""},
		{name: "nil", raw: nil},
		{name: "false", raw: false},
		{name: "garbage", raw: "soon"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := c.AlterQueryWithValue(newQuery(), c.ParseValue(tc.raw))
			assert.Equal(t, tc.want, q.Conditions())
			assert.Len(t, q.Args(), tc.params)
		})
	}
}

func TestDate_SetFallsBackToBasic(t *testing.T) {
	c := NewDate("created")

	q := c.AlterQueryWithValue(newQuery(), c.ParseValue("2024-01-01..2024-02-01"))
	assert.Equal(t, []queryir.Predicate{
		queryir.Between{Field: "created", Min: "2024-01-01", Max: "2024-02-01"},
	}, q.Conditions())
}

func TestDateTime_AlterQueryWithValue(t *testing.T) {
	c := NewDateTime("updated", WithColumnName("updated_at"))

	q := c.AlterQueryWithValue(newQuery(), c.ParseValue("2024-03-09"))
	assert.Equal(t, []queryir.Predicate{
		queryir.DateEquals{Field: "updated_at", Part: queryir.PartYear, Value: 2024},
		queryir.DateEquals{Field: "updated_at", Part: queryir.PartMonth, Value: 3},
		queryir.DateEquals{Field: "updated_at", Part: queryir.PartDay, Value: 9},
	}, q.Conditions())

	q = c.AlterQueryWithValue(newQuery(), c.ParseValue("2024"))
	assert.Len(t, q.Conditions(), 1)

	q = c.AlterQueryWithValue(newQuery(), c.ParseValue(""))
	assert.Empty(t, q.Conditions())
}

func genderPairs() *Pairs {
	return NewPairs("gender", []Pair{
		{Value: "f", Label: "Female"},
		{Value: "m", Label: "Male"},
	})
}

func TestPairs_ParseQueryString(t *testing.T) {
	c := genderPairs()
	q := querystring.New("female runners")

	c.ParseQueryString(q)

	assert.Equal(t, map[string]any{"gender": "f"}, q.Conditions())
	assert.Equal(t, "runners", q.Remains())
}

func TestPairs_SeveralWordsBecomeASet(t *testing.T) {
	c := genderPairs()
	q := querystring.New("male or female")

	c.ParseQueryString(q)

	assert.Equal(t, map[string]any{"gender": value.Set{"m", "f"}}, q.Conditions())
}

func TestPairs_Humanize(t *testing.T) {
	c := genderPairs()

	assert.Equal(t, "Female", c.Humanize(c.ParseValue("f")))
	assert.Equal(t, []string{"Female", "Male"}, c.Humanize(c.ParseValue("f|x|m")))
	assert.Nil(t, c.Humanize(c.ParseValue("x")))
	assert.Nil(t, c.Humanize(c.ParseValue("x|y")))
}

func TestPairs_CloneCopiesPairs(t *testing.T) {
	c := genderPairs()
	clone := c.Clone().(*Pairs)

	clone.pairs[0].Label = "changed"
	assert.Equal(t, "Female", c.Pairs()[0].Label)
}

func TestClaimsOnlyUnmatchedWords(t *testing.T) {
	red := NewBoolean("red")
	color := NewPairs("color", []Pair{{Value: "r", Label: "red"}})
	q := querystring.New("red car")

	red.ParseQueryString(q)
	color.ParseQueryString(q)

	assert.Equal(t, map[string]any{"red": true}, q.Conditions())
	assert.Equal(t, "car", q.Remains())
}
