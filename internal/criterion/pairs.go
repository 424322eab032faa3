package criterion

import (
	"github.com/roach88/facets/internal/querystring"
	"github.com/roach88/facets/internal/value"
)

// Pair maps a stored value to its display label.
type Pair struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Pairs is an enumerated criterion. Free-text words equal to a label select
// the paired value, and values humanize to their labels.
type Pairs struct {
	Basic
	pairs []Pair
}

var _ Criterion = (*Pairs)(nil)

// NewPairs creates an enumerated criterion over pairs, in display order.
func NewPairs(id string, pairs []Pair, opts ...Option) *Pairs {
	return &Pairs{
		Basic: newBasic(id, opts),
		pairs: append([]Pair(nil), pairs...),
	}
}

// Pairs returns a copy of the value/label pairs.
func (p *Pairs) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// ParseQueryString claims unclaimed words whose normalized form equals a
// normalized label. The first pair with that label wins.
func (p *Pairs) ParseQueryString(q *querystring.QueryString) {
	labels := make([]string, len(p.pairs))
	for i, pair := range p.pairs {
		labels[i] = querystring.Normalize(pair.Label)
	}

	for _, w := range q.NotMatched() {
		for i, label := range labels {
			if label == "" || w.Normalized() != label {
				continue
			}
			w.SetMatch(p.id, p.pairs[i].Value)
			break
		}
	}
}

// Humanize maps values to labels. Unknown values are dropped: a scalar with
// no label humanizes to nil and a set to the labels it has.
func (p *Pairs) Humanize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case value.Set:
		var labels []string
		for _, m := range x {
			if label, ok := p.label(m); ok {
				labels = append(labels, label)
			}
		}
		if len(labels) == 0 {
			return nil
		}
		return labels
	case value.Scalar:
		return p.Humanize(x.V)
	default:
		if label, ok := p.label(v); ok {
			return label
		}
		return nil
	}
}

func (p *Pairs) label(v any) (string, bool) {
	s := value.Format(v)
	for _, pair := range p.pairs {
		if pair.Value == s && pair.Label != "" {
			return pair.Label, true
		}
	}
	return "", false
}

func (p *Pairs) Clone() Criterion {
	c := *p
	c.pairs = append([]Pair(nil), p.pairs...)
	return &c
}
