// Package value parses raw filter input into criterion values.
//
// Filter values arrive from untrusted request input as strings, collections
// or maps. From turns them into one of three shapes:
//
//	"red"          Scalar{"red"}
//	"red|green"    Set{"red", "green"}
//	"2000..2014"   Interval{"2000", "2014"}
//	"..2014"       Interval{nil, "2014"}
//
// Degenerate shapes collapse: "a|a" and "5..5" are scalars. Parsing is
// permissive and never returns an error; input that is neither a set nor an
// interval is kept as a plain scalar.
package value
