// Package fetcher turns request modifiers into an executed faceted query.
//
// A fetch runs these steps in order:
//
//  1. Split the modifiers into conditions, order, limit, page and q.
//  2. Parse q into a QueryString and let criteria claim words.
//  3. Merge explicit modifiers over the words' conditions (explicit wins)
//     and fold them through the criterion list.
//  4. Clone the initial query, apply baseline requirements and conditions.
//  5. Count matching records. The count is taken before ordering and
//     paging so it covers the whole match set.
//  6. Apply the order and the LIMIT/OFFSET window.
//  7. Fetch records, let criteria post-process them and run alter hooks.
//
// A Fetcher is a reusable template; each Fetch overwrites its per-call state
// and the returned RecordCollection keeps a frozen clone.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/facets/internal/criterion"
	"github.com/roach88/facets/internal/metrics"
	"github.com/roach88/facets/internal/model"
	"github.com/roach88/facets/internal/query"
	"github.com/roach88/facets/internal/queryir"
	"github.com/roach88/facets/internal/querystring"
	"github.com/roach88/facets/internal/store"
	"github.com/roach88/facets/internal/value"
)

// Reserved modifier keys.
const (
	ModifierOrder = "order"
	ModifierLimit = "limit"
	ModifierPage  = "page"
	ModifierQ     = "q"
)

// Fetcher fetches records of one model.
//
// Fetcher is not safe for concurrent use. Use one per request, or Clone.
type Fetcher struct {
	model   *model.Model
	runner  query.Runner
	list    *criterion.List
	logger  *slog.Logger
	metrics *metrics.FetchMetrics
	ids     IDGenerator
	hooks   []AlterHook

	newInitialQuery func() *query.Query
	alterList       func(*criterion.List) *criterion.List

	// Per fetch state.
	id           string
	modifiers    map[string]any
	conditions   map[string]any
	order        string
	limit        int
	offset       int
	count        int
	queryString  *querystring.QueryString
	initialQuery *query.Query
	query        *query.Query
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithMetrics records every fetch on m.
func WithMetrics(m *metrics.FetchMetrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithIDGenerator sets the fetch ID generator. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(f *Fetcher) { f.ids = g }
}

// WithInitialQuery replaces the model's empty query as the starting point of
// every fetch. newQuery is called once; its result is cloned per fetch.
func WithInitialQuery(newQuery func() *query.Query) Option {
	return func(f *Fetcher) { f.newInitialQuery = newQuery }
}

// WithCriterionListAlter lets the caller adjust the fetcher's own copy of
// the criterion list, for example to add or remove criteria.
func WithCriterionListAlter(alter func(*criterion.List) *criterion.List) Option {
	return func(f *Fetcher) { f.alterList = alter }
}

// WithAlterHook registers a hook run after records are fetched. Hooks run in
// registration order.
func WithAlterHook(h AlterHook) Option {
	return func(f *Fetcher) { f.hooks = append(f.hooks, h) }
}

// New creates a fetcher over m. The fetcher works on a clone of list.
func New(m *model.Model, runner query.Runner, list *criterion.List, opts ...Option) *Fetcher {
	f := &Fetcher{
		model:  m,
		runner: runner,
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.logger = f.logger.With("component", "fetcher", "model", m.ID)

	if list == nil {
		list = criterion.Of()
	}
	f.list = list.Clone()
	if f.alterList != nil {
		f.list = f.alterList(f.list)
	}

	return f
}

// Fetch runs one fetch with modifiers.
func (f *Fetcher) Fetch(ctx context.Context, modifiers map[string]any) (*RecordCollection, error) {
	start := time.Now()

	coll, err := f.fetch(ctx, modifiers)
	if err != nil {
		f.metrics.FetchFailed(f.model.ID)
		f.logger.Error("fetch failed", "fetch_id", f.id, "error", err)
		return nil, err
	}

	f.metrics.ObserveFetch(f.model.ID, time.Since(start), coll.Len())
	f.metrics.ObserveWords(f.model.ID, len(f.queryString.Matched()), len(f.queryString.NotMatched()))

	f.logger.Debug("fetch completed",
		"fetch_id", f.id,
		"conditions", len(f.conditions),
		"total", f.count,
		"returned", coll.Len(),
		"duration", time.Since(start),
	)
	return coll, nil
}

func (f *Fetcher) fetch(ctx context.Context, modifiers map[string]any) (*RecordCollection, error) {
	f.id = f.ids.Generate()
	f.modifiers = maps.Clone(modifiers)
	if f.modifiers == nil {
		f.modifiers = map[string]any{}
	}

	f.parseModifiers(f.modifiers)

	q := f.InitialQuery().Clone()
	q = f.list.AlterQuery(q)
	q = f.list.AlterQueryWithConditions(q, f.conditions)

	count, err := q.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", f.model.ID, err)
	}
	f.count = count

	if f.order != "" {
		q = f.list.AlterQueryWithOrder(q, f.order, 1)
	}
	q = q.Limit(f.offset, f.limit)
	f.query = q

	if res := queryir.Validate(q.Select()); !res.IsPortable {
		f.logger.Debug("query is not portable", "fetch_id", f.id, "warnings", res.Warnings)
	}

	records, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.model.ID, err)
	}
	records = f.list.AlterRecords(records)

	coll := NewRecordCollection(records, f.Clone())
	for _, hook := range f.hooks {
		ev := &AlterEvent{collection: coll}
		if err := hook(ev); err != nil {
			return nil, fmt.Errorf("alter hook: %w", err)
		}
		coll = ev.collection
	}

	return coll, nil
}

// parseModifiers resolves the per fetch state from modifiers.
func (f *Fetcher) parseModifiers(modifiers map[string]any) {
	f.queryString = f.list.ParseQueryString(stringModifier(modifiers[ModifierQ]))

	merged := f.queryString.Conditions()
	for k, v := range modifiers {
		merged[k] = v
	}

	f.conditions = make(map[string]any)
	f.list.AlterConditions(f.conditions, merged)

	f.order = stringModifier(modifiers[ModifierOrder])
	f.limit = intModifier(modifiers[ModifierLimit])
	page := intModifier(modifiers[ModifierPage])

	f.offset = 0
	if f.limit > 0 && page > 0 {
		f.offset = page * f.limit
	}
}

// FetchOne fetches the first matching record, or nil when nothing matches.
// The limit defaults to 1 unless modifiers set one.
func (f *Fetcher) FetchOne(ctx context.Context, modifiers map[string]any) (store.Record, error) {
	m := maps.Clone(modifiers)
	if m == nil {
		m = map[string]any{}
	}
	if _, ok := m[ModifierLimit]; !ok {
		m[ModifierLimit] = 1
	}

	coll, err := f.Fetch(ctx, m)
	if err != nil {
		return nil, err
	}
	return coll.One(), nil
}

// Clone returns a snapshot of the fetcher. Queries, the query string and the
// criterion list are deep copies.
func (f *Fetcher) Clone() *Fetcher {
	c := *f
	c.hooks = append([]AlterHook(nil), f.hooks...)
	c.list = f.list.Clone()
	c.modifiers = maps.Clone(f.modifiers)
	c.conditions = maps.Clone(f.conditions)
	c.queryString = f.queryString.Clone()
	if f.initialQuery != nil {
		c.initialQuery = f.initialQuery.Clone()
	}
	if f.query != nil {
		c.query = f.query.Clone()
	}
	return &c
}

// InitialQuery returns the query every fetch starts from, creating it on
// first use.
func (f *Fetcher) InitialQuery() *query.Query {
	if f.initialQuery == nil {
		if f.newInitialQuery != nil {
			f.initialQuery = f.newInitialQuery()
		} else {
			f.initialQuery = f.model.NewQuery(f.runner)
		}
	}
	return f.initialQuery
}

// Model returns the fetched model.
func (f *Fetcher) Model() *model.Model { return f.model }

// CriterionList returns the fetcher's criterion list.
func (f *Fetcher) CriterionList() *criterion.List { return f.list }

// ID returns the ID of the last fetch.
func (f *Fetcher) ID() string { return f.id }

// Modifiers returns the modifiers of the last fetch.
func (f *Fetcher) Modifiers() map[string]any { return f.modifiers }

// Conditions returns the resolved conditions of the last fetch.
func (f *Fetcher) Conditions() map[string]any { return f.conditions }

// Order returns the order modifier of the last fetch.
func (f *Fetcher) Order() string { return f.order }

// Limit returns the page size of the last fetch, 0 when unlimited.
func (f *Fetcher) Limit() int { return f.limit }

// Offset returns the offset of the last fetch.
func (f *Fetcher) Offset() int { return f.offset }

// Page returns the zero-based page of the last fetch, 0 when unlimited.
func (f *Fetcher) Page() int {
	if f.limit <= 0 {
		return 0
	}
	return f.offset / f.limit
}

// Count returns the number of records matching the last fetch's conditions,
// ignoring paging.
func (f *Fetcher) Count() int { return f.count }

// QueryString returns the parsed q modifier of the last fetch.
func (f *Fetcher) QueryString() *querystring.QueryString { return f.queryString }

// Query returns the query executed by the last fetch.
func (f *Fetcher) Query() *query.Query { return f.query }

func stringModifier(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(value.Format(v))
}

// intModifier coerces limit and page modifiers. Non-numeric and negative
// values are 0.
func intModifier(v any) int {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int32:
		n = int(x)
	case int64:
		n = int(x)
	case uint:
		n = int(x)
	case float64:
		n = int(x)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		n = parsed
	}
	if n < 0 {
		return 0
	}
	return n
}
