package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/facets/internal/config"
)

// ValidationIssue is one configuration problem.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Models   int               `json:"models"`
	Criteria int               `json:"criteria"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration files, merge them and check them without
touching the database: drivers, criterion types, parents and parent cycles.

Exit codes:
  0 - Configuration valid
  1 - Configuration invalid
  2 - Configuration could not be loaded`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if len(opts.Config) == 0 {
		_ = formatter.Error(config.ErrCodeNotFound, "no configuration: pass --config", nil)
		return NewExitError(ExitCommandError, "no configuration")
	}

	cfg, err := config.LoadAll(opts.Config...)
	if err != nil {
		code := config.ErrorCode(err)
		if code == "" {
			code = config.ErrCodeGeneric
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	result := ValidationResult{Models: len(cfg.Models)}
	for _, mf := range cfg.Facets {
		result.Criteria += len(mf.Criteria)
	}

	for _, err := range cfg.Validate(nil) {
		var le *config.LoadError
		if errors.As(err, &le) {
			result.Errors = append(result.Errors, ValidationIssue{Code: le.Code, Message: le.Message})
			continue
		}
		result.Errors = append(result.Errors, ValidationIssue{Code: config.ErrCodeGeneric, Message: err.Error()})
	}
	result.Valid = len(result.Errors) == 0

	if err := formatter.Success(result, func(w io.Writer) {
		writeValidationText(w, result)
	}); err != nil {
		return err
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}
	return nil
}

func writeValidationText(w io.Writer, r ValidationResult) {
	if r.Valid {
		fmt.Fprintf(w, "✓ Configuration valid (%d models, %d criteria)\n", r.Models, r.Criteria)
		return
	}
	for _, issue := range r.Errors {
		fmt.Fprintf(w, "✗ %s: %s\n", issue.Code, issue.Message)
	}
	fmt.Fprintf(w, "\n%d validation error(s)\n", len(r.Errors))
}
