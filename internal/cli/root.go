package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/facets/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string   // "json" | "text"
	Config  []string // configuration files, merged in order
	DB      string   // overrides database.dsn
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the facets CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "facets - faceted search over relational data",
		Long: `Build and run faceted search queries from request modifiers.

Criteria declared in a YAML or CUE configuration turn modifiers such as
online=yes, age=30..45 or q="male online" into filtered, ordered and paged
SQL queries.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(cmd.ErrOrStderr(), opts.Verbose, config.LogConfig{})
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringSliceVarP(&opts.Config, "config", "c", nil, "configuration file (.yaml, .yml or .cue); repeat to merge")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database DSN, overrides the configuration")

	// Add subcommands
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewHumanizeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the facets CLI and exits with the command's exit code.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(GetExitCode(err))
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging installs the default slog handler on w. Verbose forces
// debug level; otherwise the configured level applies.
func configureLogging(w io.Writer, verbose bool, lc config.LogConfig) {
	level := lc.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}
