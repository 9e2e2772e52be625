package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlsolr/internal/config"
	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/document"
	"github.com/roach88/cqlsolr/internal/fields"
	"github.com/roach88/cqlsolr/internal/store"
)

var errNoCurrentDocument = errors.New("no current document given (use --current-id or --current)")

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Config    string // field configuration file (.yaml, .yml, .cue)
	Database  string // SQLite document database
	CurrentID int64  // content id of the current document
	Current   string // local reference of the current document
}

// ConvertOutput is the payload of a successful conversion.
type ConvertOutput struct {
	Query    string   `json:"query"`
	Sort     string   `json:"sort"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <query-file>",
		Short: "Convert a CQL statement to Solr parameters",
		Long: `Convert a CQL statement to the Solr q and sort parameters.

Content ids are resolved against the document database given with --db.
Without it every content id is reported as not found.

Exit codes:
  0 - Conversion succeeded
  1 - Conversion failed (INVALID_VALUE, NOT_FOUND, UNSORTABLE, BUG)
  2 - Command error (unreadable query, invalid config, missing database)

Examples:
  cqlsolr convert query.yaml
  cqlsolr convert query.yaml --config fields.cue --db docs.db --current-id 12
  cqlsolr convert query.yaml --current Eng.Backend.WebHome --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "field configuration file (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite document database")
	cmd.Flags().Int64Var(&opts.CurrentID, "current-id", 0, "content id of the current document")
	cmd.Flags().StringVar(&opts.Current, "current", "", "local reference of the current document (Space.Page)")
	cmd.MarkFlagsMutuallyExclusive("current-id", "current")

	return cmd
}

func runConvert(ctx context.Context, opts *ConvertOptions, queryPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := formatter.Logger()

	stmt, err := cql.DecodeFile(queryPath)
	if err != nil {
		return outputCommandError(formatter, queryErrorCode(err), err)
	}
	formatter.VerboseLog("Decoded %s", queryPath)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err)
	}

	st, err := openDocuments(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err)
	}
	defer st.Close()

	deps, err := convertDeps(ctx, st, opts)
	if err != nil {
		return outputCommandError(formatter, ErrCodeQuery, err)
	}

	registry, err := cfg.NewRegistry(logger, deps)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err)
	}

	validation := cql.Validate(stmt)
	for _, w := range validation.Warnings {
		logger.Warn("suspicious query construct", "query", queryPath, "warning", w)
	}

	res, err := convert.NewCompiler(registry).Compile(stmt)
	if err != nil {
		logger.Debug("conversion failed", "query", queryPath, "error", err)
		return outputConversionError(formatter, err)
	}

	out := ConvertOutput{Query: res.Query, Sort: res.Sort, Warnings: validation.Warnings}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	writeConvertText(formatter.Writer, out)
	return nil
}

// openDocuments opens an existing document database, or an empty in-memory
// one when path is empty.
func openDocuments(path string) (*store.Store, error) {
	if path == "" {
		return store.Open(":memory:")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document database not found: %w", err)
	}
	return store.Open(path)
}

func convertDeps(ctx context.Context, st *store.Store, opts *ConvertOptions) (fields.Deps, error) {
	deps := fields.Deps{Resolver: st.Resolver(ctx)}
	switch {
	case opts.CurrentID != 0:
		deps.Current = st.Current(ctx, opts.CurrentID)
	case opts.Current != "":
		ref, err := document.ParseLocal(opts.Current)
		if err != nil {
			return fields.Deps{}, fmt.Errorf("invalid --current: %w", err)
		}
		deps.Current = document.Fixed(ref)
	default:
		deps.Current = func() (document.Reference, error) {
			return document.Reference{}, errNoCurrentDocument
		}
	}
	return deps, nil
}

func queryErrorCode(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return ErrCodeNotFound
	}
	return ErrCodeQuery
}

func writeConvertText(w io.Writer, out ConvertOutput) {
	fmt.Fprintf(w, "q=%s\n", out.Query)
	if out.Sort != "" {
		fmt.Fprintf(w, "sort=%s\n", out.Sort)
	}
	for _, warning := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// outputCommandError reports an error that prevented the conversion from
// running at all.
func outputCommandError(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// conversionDetails locates a conversion error in the query document.
type conversionDetails struct {
	Field  string `json:"field,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (d conversionDetails) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("field=%s", d.Field)
	}
	return fmt.Sprintf("field=%s line=%d column=%d", d.Field, d.Line, d.Column)
}

// outputConversionError reports a failed conversion under its conversion
// error code.
func outputConversionError(formatter *OutputFormatter, err error) error {
	code := string(convert.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}

	var details interface{}
	var ce *convert.ConversionError
	if errors.As(err, &ce) {
		details = conversionDetails{Field: ce.Field, Line: ce.Pos.Line, Column: ce.Pos.Column}
	}

	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, "conversion failed", err)
}
