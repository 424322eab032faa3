// Package criterion implements the facets a fetch can filter and sort on.
//
// A Criterion is one named, typed facet. It claims words of a free-text
// QueryString, parses raw filter values, folds modifiers into the conditions
// map and writes predicates and ORDER BY terms into a query.Query.
//
// Basic carries the default behavior of every hook. The variants Boolean,
// Date, DateTime and Pairs embed Basic and override what differs. A List
// holds criteria in registration order and runs each hook across all of
// them.
package criterion

import (
	"fmt"
	"strings"

	"github.com/roach88/facets/internal/query"
	"github.com/roach88/facets/internal/queryir"
	"github.com/roach88/facets/internal/querystring"
	"github.com/roach88/facets/internal/store"
	"github.com/roach88/facets/internal/value"
)

// Criterion is a named facet.
type Criterion interface {
	// ID is the stable identifier, also the modifier key.
	ID() string

	// ColumnName is the column filters and orders apply to. Defaults to ID.
	ColumnName() string

	// ParseQueryString claims words of q under this criterion's id.
	ParseQueryString(q *querystring.QueryString)

	// ParseValue turns a raw modifier into the value AlterQueryWithValue
	// expects.
	ParseValue(raw any) any

	// AlterConditions copies this criterion's modifier into conditions, or
	// removes the condition when the modifier is absent or empty.
	AlterConditions(conditions, modifiers map[string]any)

	// AlterQuery adds baseline requirements to q.
	AlterQuery(q *query.Query) *query.Query

	// AlterQueryWithValue filters q with a parsed value.
	AlterQueryWithValue(q *query.Query, v any) *query.Query

	// AlterQueryWithOrder orders q on this criterion, descending when
	// direction < 0.
	AlterQueryWithOrder(q *query.Query, direction int) *query.Query

	// AlterRecords post-processes fetched records.
	AlterRecords(records []store.Record) []store.Record

	// Humanize returns a display form of a parsed value: a string, a
	// []string, or nil when there is nothing to display.
	Humanize(v any) any

	// FormatHumanizedValue renders the result of Humanize as a string.
	FormatHumanizedValue(h any) string

	// Clone returns an independent copy.
	Clone() Criterion
}

// Option configures a criterion at construction.
type Option func(*Basic)

// WithColumnName sets the column the criterion filters on. An empty name is
// ignored.
func WithColumnName(name string) Option {
	return func(b *Basic) {
		if name != "" {
			b.column = name
		}
	}
}

// Basic is a generic criterion: equality on scalars, IN on sets and range
// filters on intervals.
type Basic struct {
	id     string
	column string
}

var _ Criterion = (*Basic)(nil)

// NewBasic creates a generic criterion.
func NewBasic(id string, opts ...Option) *Basic {
	b := newBasic(id, opts)
	return &b
}

func newBasic(id string, opts []Option) Basic {
	b := Basic{id: id}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *Basic) ID() string { return b.id }

func (b *Basic) ColumnName() string {
	if b.column == "" {
		return b.id
	}
	return b.column
}

func (b *Basic) ParseQueryString(q *querystring.QueryString) {}

func (b *Basic) ParseValue(raw any) any {
	v := value.From(raw)
	if v == nil {
		return nil
	}
	return v
}

func (b *Basic) AlterConditions(conditions, modifiers map[string]any) {
	v, ok := modifiers[b.id]
	if !ok || v == nil || v == "" {
		delete(conditions, b.id)
		return
	}
	conditions[b.id] = v
}

func (b *Basic) AlterQuery(q *query.Query) *query.Query { return q }

// AlterQueryWithValue filters on the column:
//
//	Interval{nil, max}  column <= max
//	Interval{min, nil}  column >= min
//	Interval{min, max}  column BETWEEN min AND max
//	Set                 column IN (...)
//	Scalar / other      column = value
//
// A nil value leaves q untouched.
func (b *Basic) AlterQueryWithValue(q *query.Query, v any) *query.Query {
	column := b.ColumnName()

	switch x := v.(type) {
	case nil:
		return q
	case value.Interval:
		switch {
		case x.Min == nil && x.Max == nil:
			return q
		case x.Min == nil:
			return q.And(queryir.Compare{Field: column, Op: queryir.OpLessOrEqual, Value: x.Max})
		case x.Max == nil:
			return q.And(queryir.Compare{Field: column, Op: queryir.OpGreaterOrEqual, Value: x.Min})
		}
		return q.And(queryir.Between{Field: column, Min: x.Min, Max: x.Max})
	case value.Set:
		return q.And(queryir.In{Field: column, Values: []any(x)})
	case value.Scalar:
		return q.And(queryir.Equals{Field: column, Value: x.V})
	default:
		return q.And(queryir.Equals{Field: column, Value: v})
	}
}

func (b *Basic) AlterQueryWithOrder(q *query.Query, direction int) *query.Query {
	return q.Order(b.ColumnName(), direction < 0)
}

func (b *Basic) AlterRecords(records []store.Record) []store.Record { return records }

// Humanize renders an interval as "min – max" and anything else in its
// string form.
func (b *Basic) Humanize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case value.Interval:
		return fmt.Sprintf("%s – %s", value.Format(x.Min), value.Format(x.Max))
	default:
		return value.Format(v)
	}
}

// FormatHumanizedValue joins lists with ", ".
func (b *Basic) FormatHumanizedValue(h any) string {
	switch x := h.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(x, ", ")
	default:
		return value.Format(h)
	}
}

func (b *Basic) Clone() Criterion {
	c := *b
	return &c
}
