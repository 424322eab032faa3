package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/facets/internal/config"
	"github.com/roach88/facets/internal/fetcher"
	"github.com/roach88/facets/internal/model"
	"github.com/roach88/facets/internal/store"
	"github.com/roach88/facets/internal/testutil"
	"github.com/roach88/facets/internal/value"
)

// Harness is the test execution engine.
// It runs scenario steps with a fixed fetch ID.
type Harness struct {
	store   *store.Store
	catalog *model.Catalog
	lists   *model.ListCache
	ids     *testutil.FixedIDGenerator
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load and validate the configuration
// 2. Create fresh in-memory database
// 3. Execute setup statements
// 4. Execute steps, checking expectations
// 5. Return result with pass/fail, step traces, and errors
//
// An error is returned when the scenario cannot run at all; failed
// expectations and failed fetches are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := config.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if errs := cfg.Validate(nil); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errs[0])
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	// Scenarios always run on SQLite; the modernc driver is kept when the
	// configuration asks for it.
	driver := store.DriverSQLite3
	if cfg.Database.Driver == store.DriverSQLite {
		driver = store.DriverSQLite
	}
	st, err := store.Open(store.Config{Driver: driver})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:   st,
		catalog: catalog,
		lists:   model.NewListCache(catalog, nil),
		ids:     testutil.NewFixedIDGenerator(scenario.FetchID),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	for i, stmt := range scenario.Setup {
		if _, err := st.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	return result, nil
}

// executeStep runs one fetch and checks its expectations.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	m, err := h.catalog.Model(step.Model)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: %v", index, err))
		return
	}
	list, err := h.lists.For(m)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: %v", index, err))
		return
	}

	f := fetcher.New(m, h.store, list,
		fetcher.WithLogger(h.logger),
		fetcher.WithIDGenerator(h.ids),
	)

	coll, err := f.Fetch(ctx, step.Modifiers)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: fetch failed: %v", index, err))
		return
	}

	trace := traceStep(step, m, coll)
	result.AddStep(trace)

	if step.Expect == nil {
		return
	}
	for _, err := range checkExpect(index, step.Expect, coll, trace) {
		result.AddError(err.Error())
	}
}

func traceStep(step Step, m *model.Model, coll *fetcher.RecordCollection) StepTrace {
	f := coll.Fetcher()

	trace := StepTrace{
		Model:      step.Model,
		Modifiers:  step.Modifiers,
		Conditions: make(map[string]string, len(coll.Conditions())),
		Humanized:  f.CriterionList().Humanize(coll.Conditions()),
		Remains:    f.QueryString().Remains(),
		Total:      coll.TotalCount(),
		Page:       coll.Page(),
		Keys:       []any{},
	}

	if sql, args, err := coll.Query().SQL(); err == nil {
		trace.SQL = sql
		trace.Args = args
	}
	if trace.Args == nil {
		trace.Args = []any{}
	}

	for id, raw := range coll.Conditions() {
		trace.Conditions[id] = value.Format(raw)
	}

	if m.Key != "" {
		for _, r := range coll.Records() {
			trace.Keys = append(trace.Keys, r[m.Key])
		}
	}

	return trace
}
