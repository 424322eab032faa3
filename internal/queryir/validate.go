package queryir

import (
	"fmt"
)

// ValidationResult contains the portability analysis of a Select.
type ValidationResult struct {
	// IsPortable indicates the query compiles identically for every dialect.
	IsPortable bool

	// Warnings lists problems and non-portable features found in the query.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks a Select for structural problems and dialect specific
// features.
//
// Problems reported:
//  1. Missing table or empty field names
//  2. Empty IN lists (always false)
//  3. Unknown Compare operators or DateEquals parts
//  4. Raw SQL fragments (not portable)
//  5. Negative limit or offset
//
// Validation never blocks execution; the warnings are informational.
// Validate is a pure function with no side effects.
func Validate(sel Select) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateSelect(sel)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addWarning("Select has no table")
	}

	for _, p := range sel.Filter {
		v.validatePredicate(p)
	}

	for _, o := range sel.OrderBy {
		if o.Field == "" {
			v.addWarning("ORDER BY term has an empty field")
		}
	}

	if sel.Limit < 0 {
		v.addWarning("negative limit %d", sel.Limit)
	}
	if sel.Offset < 0 {
		v.addWarning("negative offset %d", sel.Offset)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		v.addWarning("nil predicate")
		return
	}

	switch pred := p.(type) {
	case Equals:
		v.checkField("Equals", pred.Field)
	case In:
		v.checkField("In", pred.Field)
		if len(pred.Values) == 0 {
			v.addWarning("Field '%s' compared to an empty IN list - matches nothing", pred.Field)
		}
	case Between:
		v.checkField("Between", pred.Field)
	case Compare:
		v.checkField("Compare", pred.Field)
		if !isKnownOp(pred.Op) {
			v.addWarning("Field '%s' uses unknown operator %q", pred.Field, pred.Op)
		}
	case DateEquals:
		v.checkField("DateEquals", pred.Field)
		if !isKnownPart(pred.Part) {
			v.addWarning("Field '%s' uses unknown date part %q", pred.Field, pred.Part)
		}
	case Raw:
		v.addWarning("Raw SQL %q - not portable across dialects", pred.SQL)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addWarning("Unknown predicate type: %T", p)
	}
}

func (v *validator) checkField(kind, field string) {
	if field == "" {
		v.addWarning("%s predicate has an empty field", kind)
	}
}

func isKnownOp(op string) bool {
	switch op {
	case OpLessOrEqual, OpGreaterOrEqual, OpLess, OpGreater, OpNotEqual:
		return true
	}
	return false
}

func isKnownPart(part DatePart) bool {
	switch part {
	case PartDate, PartYear, PartMonth, PartDay:
		return true
	}
	return false
}
