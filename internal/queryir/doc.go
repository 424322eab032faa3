// Package queryir provides an abstract query intermediate representation (IR)
// for faceted record fetching.
//
// Criteria never write SQL directly for the common cases. They add Predicate
// values to a Select, and a backend compiler (see package querysql) turns
// the Select into a dialect specific, parameterized statement:
//
//	[criteria] → [Query IR] → [SQL Backend: SQLite | MySQL]
//
// PREDICATES:
//
//   - Equals(field, value)           field = ?
//   - In(field, values)              field IN (?)
//   - Between(field, min, max)       field BETWEEN ? AND ?
//   - Compare(field, op, value)      field <= ?, field >= ?, ...
//   - DateEquals(field, part, value) DATE(field) = ?, YEAR(field) = ?, ...
//   - Raw(sql, args)                 escape hatch for custom criteria
//   - And(predicates)                conjunction
//
// SEALED INTERFACES:
//
// Predicate is a sealed interface using the marker method pattern. Only types
// in this package implement it, so backends can switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	    // ...
//	case In:
//	    // ...
//	}
//
// Raw is the only predicate that is not portable across dialects; Validate
// reports it as a warning.
//
// VALUES:
//
// Predicate values are plain Go values (string, int64, bool, ...). They are
// always bound as parameters, never interpolated into SQL.
package queryir
