package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleSchema = `CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, is_online INTEGER, gender TEXT, age INTEGER, created TEXT)`

const peopleRows = `INSERT INTO people (id, name, is_online, gender, age, created) VALUES
	(1, 'ann', 1, 'f', 30, '2024-01-05'),
	(2, 'bob', 0, 'm', 41, '2024-02-10'),
	(3, 'cid', 1, 'm', 25, '2023-03-15')`

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestRun_Scenarios(t *testing.T) {
	testCases := []struct {
		path      string
		wantSteps int
	}{
		{"testdata/scenarios/online_people.yaml", 2},
		{"testdata/scenarios/people_filters.yaml", 5},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			s, err := LoadScenario(tc.path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)

			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Steps, tc.wantSteps)
		})
	}
}

func TestRunWithGolden_OnlinePeople(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/online_people.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s := &Scenario{
		Name:        "failing",
		Description: "Expectations that do not hold",
		Config:      "testdata/people.yaml",
		Setup:       []string{peopleSchema, peopleRows},
		Steps: []Step{
			{
				Model:     "people",
				Modifiers: map[string]any{"online": "yes", "q": "female"},
				Expect: &Expect{
					Count:      intPtr(5),
					Total:      intPtr(3),
					Page:       intPtr(2),
					Remains:    strPtr("female"),
					Conditions: map[string]any{"online": "no", "age": 30},
					Humanized:  map[string]string{"online": "no", "name": "ann"},
					Field:      "name",
					Values:     []any{"bob"},
				},
			},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.ElementsMatch(t, []string{
		"steps[0]: count: expected 5, got 1",
		"steps[0]: total: expected 3, got 1",
		"steps[0]: page: expected 2, got 0",
		`steps[0]: remains: expected "female", got ""`,
		`steps[0]: conditions.age: expected "30", got no condition`,
		`steps[0]: conditions.online: expected "no", got "yes"`,
		`steps[0]: humanized.name: expected "ann", got no display value`,
		`steps[0]: humanized.online: expected "no", got "yes"`,
		"steps[0]: values of name: expected [bob], got [ann]",
	}, result.Errors)
}

func TestRun_StepErrors(t *testing.T) {
	s := &Scenario{
		Name:        "step_errors",
		Description: "Unknown model and missing table",
		Config:      "testdata/people.yaml",
		Steps: []Step{
			{Model: "ghosts"},
			{Model: "people"},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[0]")
	assert.Contains(t, result.Errors[0], "ghosts")
	assert.Contains(t, result.Errors[1], "steps[1]: fetch failed")
	assert.Empty(t, result.Steps)
}

func TestRun_SetupFailure(t *testing.T) {
	s := &Scenario{
		Name:        "bad_setup",
		Description: "Invalid setup SQL",
		Config:      "testdata/people.yaml",
		Setup:       []string{"CREATE TABLE"},
		Steps:       []Step{{Model: "people"}},
	}

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0]")
}

func TestRun_MissingConfig(t *testing.T) {
	s := &Scenario{Name: "x", Description: "x", Config: "testdata/none.yaml", Steps: []Step{{Model: "people"}}}

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_TraceWithoutExpect(t *testing.T) {
	s := &Scenario{
		Name:        "trace_only",
		Description: "Steps without expectations still trace",
		Config:      "testdata/people.yaml",
		Setup:       []string{peopleSchema, peopleRows},
		Steps:       []Step{{Model: "people", Modifiers: map[string]any{"order": "-name", "limit": 2}}},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, result.Pass)
	require.Len(t, result.Steps, 1)

	trace := result.Steps[0]
	assert.Equal(t, `SELECT * FROM "people" ORDER BY "name" DESC, "id" ASC LIMIT 2`, trace.SQL)
	assert.Equal(t, []any{}, trace.Args)
	assert.Equal(t, 3, trace.Total)
	assert.Equal(t, []any{int64(3), int64(2)}, trace.Keys)
	assert.Empty(t, trace.Conditions)
}

func TestValuesEqual(t *testing.T) {
	testCases := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"same string", "ann", "ann", true},
		{"int64 and int", int64(3), 3, true},
		{"sqlite true", int64(1), true, true},
		{"sqlite false", int64(0), false, true},
		{"different", "ann", "bob", false},
		{"one is not true", int64(2), true, false},
		{"nil and empty", nil, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, valuesEqual(tc.actual, tc.expected))
		})
	}
}
