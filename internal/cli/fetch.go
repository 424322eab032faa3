package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/facets/internal/fetcher"
	"github.com/roach88/facets/internal/metrics"
	"github.com/roach88/facets/internal/store"
	"github.com/roach88/facets/internal/value"
)

// FetchOptions holds flags for the fetch command.
type FetchOptions struct {
	*RootOptions
	Limit   int
	Page    int
	Order   string
	Q       string
	Metrics bool // print fetch metrics to stderr
}

// FetchResult is the output of the fetch command.
type FetchResult struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	SQL        string            `json:"sql"`
	Args       []any             `json:"args"`
	Conditions map[string]string `json:"conditions"`
	Humanized  map[string]string `json:"humanized"`
	Remains    string            `json:"remains,omitempty"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Records    []store.Record    `json:"records"`
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FetchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fetch <model> [key=value ...]",
		Short: "Run a faceted fetch",
		Long: `Run a faceted fetch against the configured database.

Modifiers are given as key=value pairs. Repeating a key builds a set.
The reserved keys order, limit, page and q control ordering, paging and
free-text matching; --order, --limit, --page and -q set them too.

Examples:
  facets fetch people online=yes --limit 10 -c facets.yaml
  facets fetch people age=30..45 gender=f gender=m --order -age -c facets.yaml
  facets fetch people -q "male online" --format json -c facets.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (0 = no limit)")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "zero-based page")
	cmd.Flags().StringVar(&opts.Order, "order", "", "criterion to order by, prefix with - for descending")
	cmd.Flags().StringVarP(&opts.Q, "query", "q", "", "free-text query")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print fetch metrics to stderr")

	return cmd
}

func runFetch(opts *FetchOptions, modelID string, args []string, cmd *cobra.Command) error {
	modifiers, err := parseModifierArgs(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	setFlag := func(name, key string, v any) {
		if _, ok := modifiers[key]; !ok && cmd.Flags().Changed(name) {
			modifiers[key] = v
		}
	}
	setFlag("limit", fetcher.ModifierLimit, opts.Limit)
	setFlag("page", fetcher.ModifierPage, opts.Page)
	setFlag("order", fetcher.ModifierOrder, opts.Order)
	setFlag("query", fetcher.ModifierQ, opts.Q)

	env, err := loadEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	m, list, err := env.model(modelID)
	if err != nil {
		return err
	}
	if err := env.openStore(opts.RootOptions); err != nil {
		return err
	}

	fetchOpts := []fetcher.Option{}
	var registry *prometheus.Registry
	if opts.Metrics {
		registry = prometheus.NewRegistry()
		fetchOpts = append(fetchOpts, fetcher.WithMetrics(metrics.NewFetchMetrics(registry)))
	}

	f := fetcher.New(m, env.store, list, fetchOpts...)
	coll, err := f.Fetch(cmd.Context(), modifiers)
	if err != nil {
		return WrapExitError(ExitFailure, "fetch failed", err)
	}

	if registry != nil {
		if err := writeMetrics(cmd.ErrOrStderr(), registry); err != nil {
			return err
		}
	}

	result := buildFetchResult(coll)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(result, func(w io.Writer) {
		writeFetchText(w, result, m.Key)
	})
}

func buildFetchResult(coll *fetcher.RecordCollection) FetchResult {
	f := coll.Fetcher()

	result := FetchResult{
		ID:         coll.ID(),
		Model:      f.Model().ID,
		Conditions: formatConditions(coll.Conditions()),
		Humanized:  f.CriterionList().Humanize(coll.Conditions()),
		Remains:    f.QueryString().Remains(),
		Total:      coll.TotalCount(),
		Page:       coll.Page(),
		Limit:      coll.Limit(),
		Records:    coll.Records(),
	}
	if sql, args, err := coll.Query().SQL(); err == nil {
		result.SQL = sql
		result.Args = args
	}
	if result.Args == nil {
		result.Args = []any{}
	}
	return result
}

func formatConditions(conditions map[string]any) map[string]string {
	out := make(map[string]string, len(conditions))
	for id, raw := range conditions {
		out[id] = value.Format(raw)
	}
	return out
}

func writeFetchText(w io.Writer, r FetchResult, key string) {
	fmt.Fprintf(w, "%s: %d of %d", r.Model, len(r.Records), r.Total)
	if r.Limit > 0 {
		fmt.Fprintf(w, " (page %d, limit %d)", r.Page, r.Limit)
	}
	fmt.Fprintln(w)

	for _, id := range sortedKeys(r.Humanized) {
		fmt.Fprintf(w, "  %s: %s\n", id, r.Humanized[id])
	}
	if r.Remains != "" {
		fmt.Fprintf(w, "  unmatched: %s\n", r.Remains)
	}
	fmt.Fprintf(w, "  sql: %s\n", r.SQL)

	if len(r.Records) == 0 {
		return
	}
	fmt.Fprintln(w)

	columns := recordColumns(r.Records, key)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, rec := range r.Records {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = value.Format(rec[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// recordColumns returns the column names of records, key first, the rest
// sorted.
func recordColumns(records []store.Record, key string) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for c := range rec {
			if !seen[c] && c != key {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}
	sort.Strings(columns)
	if key != "" {
		if _, ok := records[0][key]; ok {
			columns = append([]string{key}, columns...)
		}
	}
	return columns
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
