package criterion

import (
	"strings"

	"github.com/roach88/facets/internal/querystring"
	"github.com/roach88/facets/internal/value"
)

// Boolean is a yes/no criterion. A free-text word equal to its id, such as
// "online", selects the true side.
type Boolean struct {
	Basic
}

var _ Criterion = (*Boolean)(nil)

// NewBoolean creates a boolean criterion.
func NewBoolean(id string, opts ...Option) *Boolean {
	return &Boolean{Basic: newBasic(id, opts)}
}

// ParseQueryString claims every unclaimed word whose normalized form is the
// criterion id.
func (b *Boolean) ParseQueryString(q *querystring.QueryString) {
	id := querystring.Normalize(b.id)
	for _, w := range q.NotMatched() {
		if w.Normalized() != id {
			continue
		}
		w.SetMatch(b.id, true)
	}
}

// ParseValue coerces raw to a bool. "1", "yes", "true" and "on" (any case),
// true and the number 1 are true; everything else is false.
func (b *Boolean) ParseValue(raw any) any {
	return parseBool(raw)
}

func parseBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "yes", "true", "on":
			return true
		}
		return false
	case int:
		return v == 1
	case int64:
		return v == 1
	case int32:
		return v == 1
	case uint:
		return v == 1
	case uint64:
		return v == 1
	case float64:
		return v == 1
	case value.Scalar:
		return parseBool(v.V)
	}
	return false
}

// Humanize renders true as "yes". False has no display form.
func (b *Boolean) Humanize(v any) any {
	if t, ok := v.(bool); ok && t {
		return "yes"
	}
	return nil
}

func (b *Boolean) Clone() Criterion {
	c := *b
	return &c
}
