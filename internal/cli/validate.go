package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlsolr/internal/config"
	"github.com/roach88/cqlsolr/internal/cql"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidateOutput is the payload of the validate command.
type ValidateOutput struct {
	Query    string   `json:"query"`
	Clean    bool     `json:"clean"`
	Warnings []string `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Check a query document without converting it",
		Long: `Decode a query document and report suspicious constructs: trailing
operators, empty groups, IN without a list, IS with a value.

Warnings do not fail the command. When --config is given the configuration
is loaded and checked as well.

Examples:
  cqlsolr validate query.yaml
  cqlsolr validate query.yaml --config fields.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "field configuration file to check")

	return cmd
}

func runValidate(opts *ValidateOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Config != "" {
		if _, err := config.Load(opts.Config); err != nil {
			return outputCommandError(formatter, ErrCodeConfig, err)
		}
		formatter.VerboseLog("Configuration %s is valid", opts.Config)
	}

	stmt, err := cql.DecodeFile(queryPath)
	if err != nil {
		return outputCommandError(formatter, queryErrorCode(err), err)
	}

	result := cql.Validate(stmt)
	out := ValidateOutput{Query: queryPath, Clean: result.IsClean, Warnings: result.Warnings}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	if out.Clean {
		fmt.Fprintf(w, "✓ %s is valid\n", queryPath)
		return nil
	}
	fmt.Fprintf(w, "⚠ %s has %d warning(s)\n", queryPath, len(out.Warnings))
	for _, warning := range out.Warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
	return nil
}
