package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/facets/internal/fetcher"
	"github.com/roach88/facets/internal/value"
)

// ExpectationError is returned when a step does not meet its expectation.
type ExpectationError struct {
	Step     int    // Step index
	Check    string // Expect key that failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("steps[%d]: %s: expected %s, got %s", e.Step, e.Check, e.Expected, e.Actual)
}

// checkExpect evaluates every expectation of a step.
func checkExpect(index int, e *Expect, coll *fetcher.RecordCollection, trace StepTrace) []error {
	var errs []error
	fail := func(check, expected, actual string) {
		errs = append(errs, &ExpectationError{Step: index, Check: check, Expected: expected, Actual: actual})
	}

	if e.Count != nil && *e.Count != coll.Len() {
		fail("count", fmt.Sprint(*e.Count), fmt.Sprint(coll.Len()))
	}
	if e.Total != nil && *e.Total != coll.TotalCount() {
		fail("total", fmt.Sprint(*e.Total), fmt.Sprint(coll.TotalCount()))
	}
	if e.Page != nil && *e.Page != coll.Page() {
		fail("page", fmt.Sprint(*e.Page), fmt.Sprint(coll.Page()))
	}
	if e.Remains != nil && *e.Remains != trace.Remains {
		fail("remains", fmt.Sprintf("%q", *e.Remains), fmt.Sprintf("%q", trace.Remains))
	}

	for _, id := range sortedKeys(e.Conditions) {
		want := value.Format(e.Conditions[id])
		got, ok := trace.Conditions[id]
		if !ok {
			fail("conditions."+id, fmt.Sprintf("%q", want), "no condition")
			continue
		}
		if !valuesEqual(got, e.Conditions[id]) {
			fail("conditions."+id, fmt.Sprintf("%q", want), fmt.Sprintf("%q", got))
		}
	}

	for _, id := range sortedKeys(e.Humanized) {
		got, ok := trace.Humanized[id]
		if !ok {
			fail("humanized."+id, fmt.Sprintf("%q", e.Humanized[id]), "no display value")
			continue
		}
		if got != e.Humanized[id] {
			fail("humanized."+id, fmt.Sprintf("%q", e.Humanized[id]), fmt.Sprintf("%q", got))
		}
	}

	if e.Field != "" && e.Values != nil {
		actual := make([]any, coll.Len())
		for i, r := range coll.Records() {
			actual[i] = r[e.Field]
		}
		if !sliceEqual(actual, e.Values) {
			fail("values of "+e.Field, formatList(e.Values), formatList(actual))
		}
	}

	return errs
}

// valuesEqual compares two values by their string form. SQLite returns
// integers as int64 and booleans as 0/1, while YAML yields int and bool.
func valuesEqual(actual, expected any) bool {
	a, e := value.Format(actual), value.Format(expected)
	if a == e {
		return true
	}
	switch e {
	case "true":
		return a == "1"
	case "false":
		return a == "0"
	}
	return false
}

func sliceEqual(actual, expected []any) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if !valuesEqual(actual[i], expected[i]) {
			return false
		}
	}
	return true
}

func formatList(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = value.Format(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
