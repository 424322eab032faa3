package queryir

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Predicates are AND-ed together in Select.Filter.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents a filtered, ordered, paginated read of one table.
//
// Semantics:
//
//	SELECT * FROM <from> WHERE <filter...> ORDER BY <order...>, <key> LIMIT <limit> OFFSET <offset>
//
// Key names the primary key column. When set it is appended to ORDER BY as
// a final tiebreaker so that pages are stable.
//
// Limit <= 0 means unlimited; Offset is ignored when Limit is unlimited.
type Select struct {
	From    string      // Table name
	Filter  []Predicate // AND-ed conditions (empty = no filter)
	OrderBy []Order     // ORDER BY terms, in order
	Key     string      // Primary key used as deterministic tiebreaker
	Limit   int         // Maximum rows (<= 0 = unlimited)
	Offset  int         // Rows to skip
}

// Clone returns a copy of s whose slices can be appended to independently.
func (s Select) Clone() Select {
	c := s
	c.Filter = append([]Predicate(nil), s.Filter...)
	c.OrderBy = append([]Order(nil), s.OrderBy...)
	return c
}

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> = <value>
//
// A nil Value compiles to IS NULL.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// In represents a membership predicate.
//
// Semantics:
//
//	<field> IN (<values...>)
//
// An empty Values list matches nothing.
type In struct {
	Field  string
	Values []any
}

func (In) predicateNode() {}

// Between represents an inclusive range predicate.
//
// Semantics:
//
//	<field> BETWEEN <min> AND <max>
type Between struct {
	Field string
	Min   any
	Max   any
}

func (Between) predicateNode() {}

// Operators supported by Compare.
const (
	OpLessOrEqual    = "<="
	OpGreaterOrEqual = ">="
	OpLess           = "<"
	OpGreater        = ">"
	OpNotEqual       = "<>"
)

// Compare represents a field-operator-literal predicate.
//
// Semantics:
//
//	<field> <op> <value>
type Compare struct {
	Field string
	Op    string
	Value any
}

func (Compare) predicateNode() {}

// DatePart names the part of a date or datetime column a DateEquals predicate
// compares.
type DatePart string

const (
	PartDate  DatePart = "date"  // Calendar date, "YYYY-MM-DD"
	PartYear  DatePart = "year"  // Integer year
	PartMonth DatePart = "month" // Integer month, 1-12
	PartDay   DatePart = "day"   // Integer day of month
)

// DateEquals compares one part of a date or datetime column.
//
// Semantics:
//
//	DATE(<field>) = <value>
//	YEAR(<field>) = <value>
//	...
//
// The function used for each part depends on the backend dialect.
type DateEquals struct {
	Field string
	Part  DatePart
	Value any
}

func (DateEquals) predicateNode() {}

// Raw is a literal SQL fragment with positional "?" parameters.
//
// Raw is not portable across dialects; prefer the typed predicates.
type Raw struct {
	SQL  string
	Args []any
}

func (Raw) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// Semantics:
//
//	(<predicate1> AND <predicate2> AND ... AND <predicateN>)
//
// An empty Predicates slice is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
