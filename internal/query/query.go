// Package query provides the mutable query builder criteria write into.
//
// A Query accumulates AND-ed predicates, ORDER BY terms and a LIMIT/OFFSET
// window over one table. It compiles through package querysql and executes
// against a Runner (normally *store.Store). Count always ignores ordering
// and paging, so it reports the full match set.
package query

import (
	"context"
	"fmt"

	"github.com/roach88/facets/internal/queryir"
	"github.com/roach88/facets/internal/querysql"
	"github.com/roach88/facets/internal/store"
)

// Runner executes compiled statements.
type Runner interface {
	Count(ctx context.Context, query string, args ...any) (int, error)
	Select(ctx context.Context, query string, args ...any) ([]store.Record, error)
	Dialect() querysql.Dialect
}

// Query is a mutable filter/sort/paginate builder over one table.
//
// Query is not safe for concurrent use; Clone it instead of sharing.
type Query struct {
	runner Runner
	sel    queryir.Select
}

// New creates an empty query over table. runner may be nil for queries that
// are only built and inspected.
func New(runner Runner, table string) *Query {
	return &Query{
		runner: runner,
		sel:    queryir.Select{From: table},
	}
}

// Key sets the primary key used as the final ORDER BY tiebreaker.
func (q *Query) Key(key string) *Query {
	q.sel.Key = key
	return q
}

// And adds a predicate to the conjunction.
func (q *Query) And(p queryir.Predicate) *Query {
	q.sel.Filter = append(q.sel.Filter, p)
	return q
}

// Where adds a raw SQL condition with "?" placeholders.
func (q *Query) Where(sql string, args ...any) *Query {
	return q.And(queryir.Raw{SQL: sql, Args: args})
}

// Order appends an ORDER BY term.
func (q *Query) Order(field string, desc bool) *Query {
	q.sel.OrderBy = append(q.sel.OrderBy, queryir.Order{Field: field, Desc: desc})
	return q
}

// Limit sets the paging window. A limit <= 0 removes it.
func (q *Query) Limit(offset, limit int) *Query {
	if limit <= 0 {
		q.sel.Limit, q.sel.Offset = 0, 0
		return q
	}
	if offset < 0 {
		offset = 0
	}
	q.sel.Limit, q.sel.Offset = limit, offset
	return q
}

// Table returns the queried table.
func (q *Query) Table() string { return q.sel.From }

// Conditions returns a copy of the predicates added so far.
func (q *Query) Conditions() []queryir.Predicate {
	return append([]queryir.Predicate(nil), q.sel.Filter...)
}

// Orders returns a copy of the ORDER BY terms added so far.
func (q *Query) Orders() []queryir.Order {
	return append([]queryir.Order(nil), q.sel.OrderBy...)
}

// Window returns the current offset and limit.
func (q *Query) Window() (offset, limit int) {
	return q.sel.Offset, q.sel.Limit
}

// Select returns a copy of the underlying IR.
func (q *Query) Select() queryir.Select {
	return q.sel.Clone()
}

// Clone returns an independent copy sharing only the runner.
func (q *Query) Clone() *Query {
	return &Query{runner: q.runner, sel: q.sel.Clone()}
}

// SQL compiles the query for the runner's dialect.
func (q *Query) SQL() (string, []any, error) {
	return q.compiler().Compile(q.sel)
}

// Args returns the bound parameters of the compiled query, or nil when the
// query does not compile.
func (q *Query) Args() []any {
	_, args, err := q.SQL()
	if err != nil {
		return nil
	}
	return args
}

// Count executes the COUNT variant of the query. Ordering and paging are
// ignored.
func (q *Query) Count(ctx context.Context) (int, error) {
	if q.runner == nil {
		return 0, fmt.Errorf("query on %s has no runner", q.sel.From)
	}

	sql, args, err := q.compiler().CompileCount(q.sel)
	if err != nil {
		return 0, fmt.Errorf("compile count: %w", err)
	}
	return q.runner.Count(ctx, sql, args...)
}

// All executes the query and materializes every matching record.
func (q *Query) All(ctx context.Context) ([]store.Record, error) {
	if q.runner == nil {
		return nil, fmt.Errorf("query on %s has no runner", q.sel.From)
	}

	sql, args, err := q.SQL()
	if err != nil {
		return nil, fmt.Errorf("compile select: %w", err)
	}
	return q.runner.Select(ctx, sql, args...)
}

func (q *Query) compiler() *querysql.SQLCompiler {
	var dialect querysql.Dialect
	if q.runner != nil {
		dialect = q.runner.Dialect()
	}
	return querysql.NewSQLCompiler(dialect)
}
