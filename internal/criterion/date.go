package criterion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/facets/internal/query"
	"github.com/roach88/facets/internal/queryir"
	"github.com/roach88/facets/internal/value"
)

// Date filters a date column with a "YYYY", "YYYY-MM" or "YYYY-MM-DD" value,
// using the most specific part given.
type Date struct {
	Basic
}

var _ Criterion = (*Date)(nil)

// NewDate creates a date criterion.
func NewDate(id string, opts ...Option) *Date {
	return &Date{Basic: newBasic(id, opts)}
}

// AlterQueryWithValue adds one of:
//
//	YYYY-MM-DD  DATE(column) = 'YYYY-MM-DD'
//	YYYY-MM     YEAR(column) = YYYY AND MONTH(column) = MM
//	YYYY        YEAR(column) = YYYY
//
// Sets and intervals fall back to the Basic filters. Empty or unparseable
// values leave q untouched.
func (d *Date) AlterQueryWithValue(q *query.Query, v any) *query.Query {
	s, ok := dateString(v)
	if !ok {
		return d.Basic.AlterQueryWithValue(q, v)
	}

	year, month, day, ok := splitDate(s)
	if !ok {
		return q
	}

	column := d.ColumnName()
	switch {
	case day > 0:
		return q.And(queryir.DateEquals{
			Field: column,
			Part:  queryir.PartDate,
			Value: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		})
	case month > 0:
		return q.And(queryir.And{Predicates: []queryir.Predicate{
			queryir.DateEquals{Field: column, Part: queryir.PartYear, Value: year},
			queryir.DateEquals{Field: column, Part: queryir.PartMonth, Value: month},
		}})
	case year > 0:
		return q.And(queryir.DateEquals{Field: column, Part: queryir.PartYear, Value: year})
	}
	return q
}

func (d *Date) Clone() Criterion {
	c := *d
	return &c
}

// DateTime filters a datetime column with independent year, month and day
// conditions for each part of a "YYYY[-MM[-DD]]" value.
type DateTime struct {
	Basic
}

var _ Criterion = (*DateTime)(nil)

// NewDateTime creates a datetime criterion.
func NewDateTime(id string, opts ...Option) *DateTime {
	return &DateTime{Basic: newBasic(id, opts)}
}

func (d *DateTime) AlterQueryWithValue(q *query.Query, v any) *query.Query {
	s, ok := dateString(v)
	if !ok {
		return d.Basic.AlterQueryWithValue(q, v)
	}

	year, month, day, ok := splitDate(s)
	if !ok {
		return q
	}

	column := d.ColumnName()
	if year > 0 {
		q.And(queryir.DateEquals{Field: column, Part: queryir.PartYear, Value: year})
	}
	if month > 0 {
		q.And(queryir.DateEquals{Field: column, Part: queryir.PartMonth, Value: month})
	}
	if day > 0 {
		q.And(queryir.DateEquals{Field: column, Part: queryir.PartDay, Value: day})
	}
	return q
}

func (d *DateTime) Clone() Criterion {
	c := *d
	return &c
}

// dateString extracts the string form of a scalar value. ok is false for
// sets and intervals.
func dateString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case value.Set, value.Interval:
		return "", false
	case value.Scalar:
		return value.Format(x.V), true
	case bool:
		if !x {
			return "", true
		}
		return "", false
	default:
		return value.Format(v), true
	}
}

// splitDate parses "YYYY[-MM[-DD]]". Missing parts are 0.
func splitDate(s string) (year, month, day int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, false
	}

	parts := strings.SplitN(s, "-", 3)
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}
