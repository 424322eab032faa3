package criterion

import (
	"log/slog"

	"github.com/roach88/facets/internal/query"
	"github.com/roach88/facets/internal/querystring"
	"github.com/roach88/facets/internal/store"
)

// Entry is one registration in a List: either a ready Criterion, keyed by
// its own id, or a Definition built under ID through a Registry.
type Entry struct {
	ID         string
	Criterion  Criterion
	Definition Definition
}

// List is an id-keyed registry of criteria kept in registration order.
//
// List is not safe for concurrent use; Clone it per fetch.
type List struct {
	ids      []string
	criteria map[string]Criterion
}

var builtins = NewRegistry()

// NewList builds a list from entries, resolving definitions against the
// builtin types. A later entry with the same id replaces the earlier one in
// place.
func NewList(entries ...Entry) (*List, error) {
	return NewListFromRegistry(builtins, entries...)
}

// NewListFromRegistry builds a list from entries, resolving definitions
// against reg.
func NewListFromRegistry(reg *Registry, entries ...Entry) (*List, error) {
	l := &List{criteria: make(map[string]Criterion)}
	for _, e := range entries {
		c := e.Criterion
		if c == nil {
			var err error
			c, err = reg.New(e.ID, e.Definition)
			if err != nil {
				return nil, err
			}
		}
		l.Set(c)
	}
	return l, nil
}

// Of builds a list from criteria keyed by their ids.
func Of(criteria ...Criterion) *List {
	l := &List{criteria: make(map[string]Criterion)}
	for _, c := range criteria {
		l.Set(c)
	}
	return l
}

// Set registers c under its id, replacing any criterion with that id in
// place.
func (l *List) Set(c Criterion) {
	l.set(c.ID(), c)
}

func (l *List) set(id string, c Criterion) {
	if _, ok := l.criteria[id]; !ok {
		l.ids = append(l.ids, id)
	}
	l.criteria[id] = c
}

// Get returns the criterion id or a *NotDefinedError.
func (l *List) Get(id string) (Criterion, error) {
	c, ok := l.criteria[id]
	if !ok {
		return nil, &NotDefinedError{ID: id, Defined: l.IDs()}
	}
	return c, nil
}

// Lookup returns the criterion id, if any.
func (l *List) Lookup(id string) (Criterion, bool) {
	c, ok := l.criteria[id]
	return c, ok
}

// Has reports whether id is registered.
func (l *List) Has(id string) bool {
	_, ok := l.criteria[id]
	return ok
}

// Delete removes id. Deleting an unknown id is a no-op.
func (l *List) Delete(id string) {
	if _, ok := l.criteria[id]; !ok {
		return
	}
	delete(l.criteria, id)
	for i, existing := range l.ids {
		if existing == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			break
		}
	}
}

// IDs returns the registered ids in order.
func (l *List) IDs() []string {
	return append([]string(nil), l.ids...)
}

// Len returns the number of criteria.
func (l *List) Len() int { return len(l.ids) }

// Each calls fn for every criterion in order.
func (l *List) Each(fn func(c Criterion)) {
	for _, id := range l.ids {
		fn(l.criteria[id])
	}
}

// ParseQueryString tokenizes phrase and lets every criterion claim words.
func (l *List) ParseQueryString(phrase string) *querystring.QueryString {
	return l.ParseQueryStringInto(querystring.New(phrase))
}

// ParseQueryStringInto lets every criterion claim words of q, in order, and
// returns q.
func (l *List) ParseQueryStringInto(q *querystring.QueryString) *querystring.QueryString {
	l.Each(func(c Criterion) {
		c.ParseQueryString(q)
	})

	if q.Len() > 0 {
		slog.Debug("query string parsed",
			"words", q.Len(),
			"matched", len(q.Matched()),
			"remains", q.Remains(),
		)
	}
	return q
}

// AlterConditions runs every criterion's AlterConditions against the shared
// conditions map.
func (l *List) AlterConditions(conditions, modifiers map[string]any) {
	l.Each(func(c Criterion) {
		c.AlterConditions(conditions, modifiers)
	})
}

// AlterQuery applies every criterion's baseline requirements.
func (l *List) AlterQuery(q *query.Query) *query.Query {
	l.Each(func(c Criterion) {
		q = c.AlterQuery(q)
	})
	return q
}

// AlterQueryWithConditions filters q with the condition of every criterion
// present in conditions. Values are parsed by their criterion first.
func (l *List) AlterQueryWithConditions(q *query.Query, conditions map[string]any) *query.Query {
	l.Each(func(c Criterion) {
		raw, ok := conditions[c.ID()]
		if !ok {
			return
		}
		q = c.AlterQueryWithValue(q, c.ParseValue(raw))
	})
	return q
}

// AlterQueryWithOrder orders q on criterionID. A leading "-" sorts
// descending. Unknown ids leave q untouched.
func (l *List) AlterQueryWithOrder(q *query.Query, criterionID string, direction int) *query.Query {
	if len(criterionID) > 0 && criterionID[0] == '-' {
		direction = -1
		criterionID = criterionID[1:]
	}

	c, ok := l.criteria[criterionID]
	if !ok {
		return q
	}
	return c.AlterQueryWithOrder(q, direction)
}

// AlterRecords lets every criterion post-process records, in order.
func (l *List) AlterRecords(records []store.Record) []store.Record {
	l.Each(func(c Criterion) {
		records = c.AlterRecords(records)
	})
	return records
}

// Humanize returns the display string of every non-empty condition, keyed
// by criterion id. Conditions with no display form are left out.
func (l *List) Humanize(conditions map[string]any) map[string]string {
	humanized := make(map[string]string)
	l.Each(func(c Criterion) {
		raw, ok := conditions[c.ID()]
		if !ok || raw == nil || raw == "" {
			return
		}
		s := c.FormatHumanizedValue(c.Humanize(c.ParseValue(raw)))
		if s == "" {
			return
		}
		humanized[c.ID()] = s
	})
	return humanized
}

// Clone returns a list holding clones of every criterion.
func (l *List) Clone() *List {
	c := &List{
		ids:      append([]string(nil), l.ids...),
		criteria: make(map[string]Criterion, len(l.criteria)),
	}
	for id, criterion := range l.criteria {
		c.criteria[id] = criterion.Clone()
	}
	return c
}
