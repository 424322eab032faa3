package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/facets/internal/value"
)

// WordResult describes one word of a parsed query string.
type WordResult struct {
	Text       string            `json:"text"`
	Normalized string            `json:"normalized"`
	Matches    map[string]string `json:"matches,omitempty"`
}

// ParseResult is the output of the parse command.
type ParseResult struct {
	Model      string            `json:"model"`
	Query      string            `json:"query"`
	Words      []WordResult      `json:"words"`
	Conditions map[string]string `json:"conditions"`
	Remains    string            `json:"remains"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <model> <query>...",
		Short: "Show how a free-text query is matched",
		Long: `Tokenize a free-text query and show which criterion claimed each word.

Arguments after the model are joined with spaces.

Examples:
  facets parse people male online -c facets.yaml
  facets parse people "marie-claire female" --format json -c facets.yaml`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], strings.Join(args[1:], " "), cmd)
		},
	}

	return cmd
}

func runParse(opts *RootOptions, modelID, phrase string, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	_, list, err := env.model(modelID)
	if err != nil {
		return err
	}

	qs := list.ParseQueryString(phrase)

	result := ParseResult{
		Model:      modelID,
		Query:      qs.String(),
		Words:      make([]WordResult, 0, qs.Len()),
		Conditions: formatConditions(qs.Conditions()),
		Remains:    qs.Remains(),
	}
	for _, w := range qs.Words() {
		wr := WordResult{Text: w.Text(), Normalized: w.Normalized()}
		if w.Matched() {
			wr.Matches = make(map[string]string)
			for id, v := range w.Match() {
				wr.Matches[id] = value.Format(v)
			}
		}
		result.Words = append(result.Words, wr)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(result, func(w io.Writer) {
		for _, word := range result.Words {
			if len(word.Matches) == 0 {
				fmt.Fprintf(w, "  %s\n", word.Text)
				continue
			}
			claims := make([]string, 0, len(word.Matches))
			for _, id := range sortedKeys(word.Matches) {
				claims = append(claims, id+"="+word.Matches[id])
			}
			fmt.Fprintf(w, "✓ %s -> %s\n", word.Text, strings.Join(claims, ", "))
		}
		if result.Remains != "" {
			fmt.Fprintf(w, "remains: %s\n", result.Remains)
		}
	})
}
