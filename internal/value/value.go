package value

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Separators recognized in the string form of structured values.
const (
	// SetSeparator joins the members of a Set, e.g. "red|green|blue".
	SetSeparator = "|"

	// IntervalSeparator joins the bounds of an Interval, e.g. "2000..2014".
	IntervalSeparator = ".."
)

// checkboxMarker is the value browsers submit for a checked checkbox.
const checkboxMarker = "on"

// Value is a sealed interface representing a parsed criterion value.
// Only Scalar, Set and Interval implement it.
type Value interface {
	fmt.Stringer
	value() // Sealed - only these types implement it
}

// Scalar is a plain value: a trimmed string, an integer or a boolean.
type Scalar struct {
	V any
}

func (Scalar) value() {}

// String returns the string form of the wrapped value.
func (s Scalar) String() string {
	return Format(s.V)
}

// Set is an ordered collection of unique members, suitable for IN().
type Set []any

func (Set) value() {}

// String joins the members with SetSeparator.
func (s Set) String() string {
	return strings.Join(s.Strings(), SetSeparator)
}

// Strings returns the string form of every member.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, m := range s {
		out[i] = Format(m)
	}
	return out
}

// Values returns a copy of the members.
func (s Set) Values() []any {
	return append([]any(nil), s...)
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Interval is a range of values, suitable for BETWEEN.
// A nil bound leaves that side of the interval open.
type Interval struct {
	Min any
	Max any
}

func (Interval) value() {}

// String renders the interval as "min..max".
// Both bounds nil renders as "", equal bounds render as the single bound.
func (i Interval) String() string {
	if i.Min == nil && i.Max == nil {
		return ""
	}
	if boundsEqual(i.Min, i.Max) {
		return Format(i.Min)
	}
	return Format(i.Min) + IntervalSeparator + Format(i.Max)
}

// From parses a raw filter value.
//
// Returns nil when raw is empty (nil, "", false, an empty collection) or is
// exactly one of the separators. Numeric 0 and "0" are not empty.
//
// An Interval is attempted first and collapses to a Scalar when both bounds
// are equal. A Set is attempted next and collapses to a Scalar when it has a
// single member. Anything else becomes a Scalar, trimmed when it is a string.
//
// From never fails: malformed input degrades to a Scalar or nil.
func From(raw any) Value {
	switch v := raw.(type) {
	case Scalar:
		return From(v.V)
	case Set:
		return fromSet(v)
	case Interval:
		return fromInterval(v)
	}

	if IsEmpty(raw) || raw == SetSeparator || raw == IntervalSeparator {
		return nil
	}

	if interval, ok := ParseInterval(raw); ok {
		return fromInterval(interval)
	}

	if set, ok := ParseSet(raw); ok {
		return fromSet(set)
	}

	if s, ok := raw.(string); ok {
		return Scalar{V: strings.TrimSpace(s)}
	}
	return Scalar{V: raw}
}

func fromInterval(i Interval) Value {
	if boundsEqual(i.Min, i.Max) {
		if i.Min == nil {
			return nil
		}
		return Scalar{V: i.Min}
	}
	return i
}

func fromSet(s Set) Value {
	switch len(s) {
	case 0:
		return nil
	case 1:
		return Scalar{V: strings.TrimSpace(Format(s[0]))}
	default:
		return s
	}
}

// ParseInterval parses raw into an Interval.
//
// raw is either a map with both "min" and "max" keys, or a string containing
// IntervalSeparator that splits into exactly two parts. Empty bounds become
// nil (open-ended). ok is false when raw is not an interval.
func ParseInterval(raw any) (interval Interval, ok bool) {
	if IsEmpty(raw) {
		return Interval{}, false
	}

	var min, max any

	switch r := raw.(type) {
	case Interval:
		return r, true
	case string:
		s := strings.TrimSpace(r)
		if s == IntervalSeparator || !strings.Contains(s, IntervalSeparator) {
			return Interval{}, false
		}
		parts := strings.Split(s, IntervalSeparator)
		if len(parts) != 2 {
			return Interval{}, false
		}
		min, max = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	default:
		m, isMap := stringMap(raw)
		if !isMap {
			return Interval{}, false
		}
		var hasMin, hasMax bool
		min, hasMin = m["min"]
		max, hasMax = m["max"]
		if !hasMin || !hasMax {
			return Interval{}, false
		}
	}

	return Interval{Min: normalizeBound(min), Max: normalizeBound(max)}, true
}

// ParseSet parses raw into a Set.
//
// raw is either a collection or a string containing SetSeparator. For a map
// whose values are all "on" (a checkbox group) the keys are the members,
// otherwise the values are. Members are trimmed and deduplicated, keeping
// the first occurrence. ok is false when raw is not a set.
//
// Map keys are visited in sorted order.
func ParseSet(raw any) (set Set, ok bool) {
	if IsEmpty(raw) {
		return nil, false
	}

	var members []any

	switch r := raw.(type) {
	case Set:
		members = r
	case string:
		s := strings.TrimSpace(r)
		if s == SetSeparator || !strings.Contains(s, SetSeparator) {
			return nil, false
		}
		for _, part := range strings.Split(s, SetSeparator) {
			members = append(members, part)
		}
	default:
		if m, isMap := stringMap(raw); isMap {
			members = mapMembers(m)
			break
		}
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, false
		}
		for i := 0; i < rv.Len(); i++ {
			members = append(members, rv.Index(i).Interface())
		}
	}

	return unique(members), true
}

// mapMembers returns the keys of a checkbox group, or the values otherwise.
func mapMembers(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	checkboxes := true
	for k, v := range m {
		keys = append(keys, k)
		if s, ok := v.(string); !ok || s != checkboxMarker {
			checkboxes = false
		}
	}
	sort.Strings(keys)

	members := make([]any, len(keys))
	for i, k := range keys {
		if checkboxes {
			members[i] = k
		} else {
			members[i] = m[k]
		}
	}
	return members
}

// unique trims string members and drops duplicates by string form.
func unique(members []any) Set {
	seen := make(map[string]bool, len(members))
	set := make(Set, 0, len(members))
	for _, m := range members {
		if s, ok := m.(string); ok {
			m = strings.TrimSpace(s)
		}
		key := Format(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		set = append(set, m)
	}
	return set
}

// stringMap converts any map keyed by strings to map[string]any.
func stringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func normalizeBound(b any) any {
	if s, ok := b.(string); ok && s == "" {
		return nil
	}
	return b
}

func boundsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Format(a) == Format(b)
}

// IsEmpty reports whether raw carries no value: nil, "", false, an empty
// collection, or a Value with nothing in it. 0 and "0" are not empty.
func IsEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case Scalar:
		return IsEmpty(v.V)
	case Set:
		return len(v) == 0
	case Interval:
		return v.Min == nil && v.Max == nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Format renders a raw or parsed value as a string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
