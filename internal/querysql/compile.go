package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/facets/internal/queryir"
)

// Dialect selects the SQL flavor the compiler emits.
type Dialect string

const (
	// SQLite targets both the mattn/go-sqlite3 and modernc.org/sqlite drivers.
	SQLite Dialect = "sqlite"

	// MySQL targets go-sql-driver/mysql.
	MySQL Dialect = "mysql"
)

// SQLCompiler compiles QueryIR to parameterized SQL.
//
// CRITICAL: All values are parameterized (never interpolated).
// IN lists compile to a single "IN (?)" placeholder bound to a slice; the
// store expands it with sqlx.In before execution.
type SQLCompiler struct {
	Dialect Dialect
}

// NewSQLCompiler creates a new SQLCompiler for the given dialect.
// An empty dialect defaults to SQLite.
func NewSQLCompiler(dialect Dialect) *SQLCompiler {
	if dialect == "" {
		dialect = SQLite
	}
	return &SQLCompiler{Dialect: dialect}
}

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Select) (string, []any, error) {
	where, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(c.Quote(q.From))
	b.WriteString(where)
	b.WriteString(c.compileOrderBy(q))

	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
		if q.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", q.Offset)
		}
	}

	return b.String(), params, nil
}

// CompileCount converts a Select to a COUNT(*) statement.
// Ordering and paging are ignored: the count covers every matching row.
func (c *SQLCompiler) CompileCount(q queryir.Select) (string, []any, error) {
	where, params, err := c.compileWhere(q.Filter)
	if err != nil {
		return "", nil, err
	}

	return "SELECT COUNT(*) FROM " + c.Quote(q.From) + where, params, nil
}

// CompilePredicate compiles a single predicate to a WHERE fragment.
func (c *SQLCompiler) CompilePredicate(p queryir.Predicate) (string, []any, error) {
	return c.compilePredicate(p)
}

func (c *SQLCompiler) compileWhere(filter []queryir.Predicate) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	var parts []string
	var params []any
	for _, pred := range filter {
		sql, args, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		parts = append(parts, sql)
		params = append(params, args...)
	}

	return " WHERE " + strings.Join(parts, " AND "), params, nil
}

// compileOrderBy returns the ORDER BY clause, with the primary key appended
// as a tiebreaker when it is not already ordered on.
func (c *SQLCompiler) compileOrderBy(q queryir.Select) string {
	var terms []string
	keyOrdered := false
	for _, o := range q.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, c.Quote(o.Field)+" "+dir)
		if o.Field == q.Key {
			keyOrdered = true
		}
	}

	if q.Key != "" && !keyOrdered {
		terms = append(terms, c.Quote(q.Key)+" ASC")
	}

	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

// compilePredicate compiles a queryir.Predicate to a SQL WHERE fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("cannot compile nil predicate")
	}

	switch pred := p.(type) {
	case queryir.Equals:
		if pred.Value == nil {
			return c.Quote(pred.Field) + " IS NULL", nil, nil
		}
		return c.Quote(pred.Field) + " = ?", []any{pred.Value}, nil

	case queryir.In:
		if len(pred.Values) == 0 {
			return "1 = 0", nil, nil // Empty set matches nothing
		}
		return c.Quote(pred.Field) + " IN (?)", []any{pred.Values}, nil

	case queryir.Between:
		return c.Quote(pred.Field) + " BETWEEN ? AND ?", []any{pred.Min, pred.Max}, nil

	case queryir.Compare:
		switch pred.Op {
		case queryir.OpLessOrEqual, queryir.OpGreaterOrEqual, queryir.OpLess, queryir.OpGreater, queryir.OpNotEqual:
		default:
			return "", nil, fmt.Errorf("unsupported operator %q on field %s", pred.Op, pred.Field)
		}
		return c.Quote(pred.Field) + " " + pred.Op + " ?", []any{pred.Value}, nil

	case queryir.DateEquals:
		expr, err := c.datePart(pred.Field, pred.Part)
		if err != nil {
			return "", nil, err
		}
		return expr + " = ?", []any{pred.Value}, nil

	case queryir.Raw:
		return "(" + pred.SQL + ")", pred.Args, nil

	case queryir.And:
		return c.compileAnd(pred)

	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileAnd compiles an And predicate to a parenthesized conjunction.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}
	if len(and.Predicates) == 1 {
		return c.compilePredicate(and.Predicates[0])
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return "(" + strings.Join(sqlParts, " AND ") + ")", allParams, nil
}

// datePart returns the expression extracting part from field.
func (c *SQLCompiler) datePart(field string, part queryir.DatePart) (string, error) {
	col := c.Quote(field)

	if c.Dialect == MySQL {
		switch part {
		case queryir.PartDate:
			return "DATE(" + col + ")", nil
		case queryir.PartYear:
			return "YEAR(" + col + ")", nil
		case queryir.PartMonth:
			return "MONTH(" + col + ")", nil
		case queryir.PartDay:
			return "DAY(" + col + ")", nil
		}
		return "", fmt.Errorf("unsupported date part %q on field %s", part, field)
	}

	// strftime returns text; cast so integer parameters compare equal.
	switch part {
	case queryir.PartDate:
		return "date(" + col + ")", nil
	case queryir.PartYear:
		return "CAST(strftime('%Y', " + col + ") AS INTEGER)", nil
	case queryir.PartMonth:
		return "CAST(strftime('%m', " + col + ") AS INTEGER)", nil
	case queryir.PartDay:
		return "CAST(strftime('%d', " + col + ") AS INTEGER)", nil
	}
	return "", fmt.Errorf("unsupported date part %q on field %s", part, field)
}

// Quote quotes an identifier for the dialect. Dotted names are quoted per
// segment ("t"."col").
func (c *SQLCompiler) Quote(ident string) string {
	q := `"`
	if c.Dialect == MySQL {
		q = "`"
	}

	segments := strings.Split(ident, ".")
	for i, s := range segments {
		segments[i] = q + strings.ReplaceAll(s, q, q+q) + q
	}
	return strings.Join(segments, ".")
}
