package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/facets/internal/fetcher"
)

// NewHumanizeCommand creates the humanize command.
func NewHumanizeCommand(rootOpts *RootOptions) *cobra.Command {
	var q string

	cmd := &cobra.Command{
		Use:   "humanize <model> [key=value ...]",
		Short: "Show the display form of conditions",
		Long: `Resolve modifiers into conditions and print their display form, as a
search page would list the active filters.

Examples:
  facets humanize people online=1 gender=f gender=m -c facets.yaml
  facets humanize people -q "male online" -c facets.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			modifiers, err := parseModifierArgs(args[1:])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}
			if _, ok := modifiers[fetcher.ModifierQ]; !ok && q != "" {
				modifiers[fetcher.ModifierQ] = q
			}
			return runHumanize(rootOpts, args[0], modifiers, cmd)
		},
	}

	cmd.Flags().StringVarP(&q, "query", "q", "", "free-text query")

	return cmd
}

func runHumanize(opts *RootOptions, modelID string, modifiers map[string]any, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	_, list, err := env.model(modelID)
	if err != nil {
		return err
	}

	q, _ := modifiers[fetcher.ModifierQ].(string)
	merged := list.ParseQueryString(q).Conditions()
	for k, v := range modifiers {
		merged[k] = v
	}
	conditions := make(map[string]any)
	list.AlterConditions(conditions, merged)

	humanized := list.Humanize(conditions)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(humanized, func(w io.Writer) {
		if len(humanized) == 0 {
			fmt.Fprintln(w, "no conditions")
			return
		}
		for _, id := range list.IDs() {
			if s, ok := humanized[id]; ok {
				fmt.Fprintf(w, "%s: %s\n", id, s)
			}
		}
	})
}
