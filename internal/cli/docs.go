package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlsolr/internal/document"
	"github.com/roach88/cqlsolr/internal/store"
)

// DocsOptions holds flags shared by the docs subcommands.
type DocsOptions struct {
	*RootOptions
	Database string
}

// DocumentOutput is one document as printed by the docs subcommands.
type DocumentOutput struct {
	ID        int64              `json:"id"`
	Reference document.Reference `json:"reference"`
	Local     string             `json:"local"`
}

func newDocumentOutput(id int64, ref document.Reference) DocumentOutput {
	return DocumentOutput{ID: id, Reference: ref, Local: document.Local(ref)}
}

// NewDocsCommand creates the docs command and its subcommands, which manage
// the document database used to resolve content ids.
func NewDocsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage the content id database",
		Long: `Manage the SQLite database mapping content ids to document references.

Examples:
  cqlsolr docs add --db docs.db 12 Eng.Backend.WebHome
  cqlsolr docs get --db docs.db 12
  cqlsolr docs find --db docs.db Eng.Backend.WebHome
  cqlsolr docs list --db docs.db --format json
  cqlsolr docs rm --db docs.db 12`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite document database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newDocsAddCommand(opts))
	cmd.AddCommand(newDocsGetCommand(opts))
	cmd.AddCommand(newDocsFindCommand(opts))
	cmd.AddCommand(newDocsListCommand(opts))
	cmd.AddCommand(newDocsRemoveCommand(opts))

	return cmd
}

func newDocsAddCommand(opts *DocsOptions) *cobra.Command {
	var wiki string
	cmd := &cobra.Command{
		Use:           "add <content-id> <Space.Page>",
		Short:         "Add or replace a document",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDocuments(cmd, opts, true, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				id, err := parseContentID(args[0])
				if err != nil {
					return outputCommandError(f, ErrCodeGeneric, err)
				}
				ref, err := document.ParseLocal(args[1])
				if err != nil {
					return outputCommandError(f, ErrCodeGeneric, err)
				}
				ref.Wiki = wiki
				if err := st.PutDocument(ctx, id, ref); err != nil {
					return outputCommandError(f, ErrCodeStore, err)
				}
				f.VerboseLog("Stored content id %d", id)
				return f.Success(newDocumentOutput(id, ref))
			})
		},
	}
	cmd.Flags().StringVar(&wiki, "wiki", "xwiki", "wiki of the document")
	return cmd
}

func newDocsGetCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <content-id>",
		Short:         "Show the document of a content id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDocuments(cmd, opts, false, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				id, err := parseContentID(args[0])
				if err != nil {
					return outputCommandError(f, ErrCodeGeneric, err)
				}
				ref, found, err := st.DocumentByID(ctx, id)
				if err != nil {
					return outputCommandError(f, ErrCodeStore, err)
				}
				if !found {
					_ = f.Error(ErrCodeNotFound, (&store.NotFoundError{ID: id}).Error(), nil)
					return NewExitError(ExitFailure, fmt.Sprintf("content id %d not found", id))
				}
				return f.Success(newDocumentOutput(id, ref))
			})
		},
	}
}

func newDocsFindCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "find <Space.Page>",
		Short:         "Show the content ids of a document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDocuments(cmd, opts, false, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				ref, err := document.ParseLocal(args[0])
				if err != nil {
					return outputCommandError(f, ErrCodeGeneric, err)
				}
				local := document.Local(ref)
				docs, err := st.DocumentsByFullName(ctx, local)
				if err != nil {
					return outputCommandError(f, ErrCodeStore, err)
				}
				if len(docs) == 0 {
					_ = f.Error(ErrCodeNotFound, fmt.Sprintf("no content id for document %s", local), nil)
					return NewExitError(ExitFailure, fmt.Sprintf("document %s not found", local))
				}
				return outputDocuments(f, docs)
			})
		},
	}
}

func newDocsListCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every document",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDocuments(cmd, opts, false, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				docs, err := st.ListDocuments(ctx)
				if err != nil {
					return outputCommandError(f, ErrCodeStore, err)
				}
				return outputDocuments(f, docs)
			})
		},
	}
}

func newDocsRemoveCommand(opts *DocsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <content-id>",
		Short:         "Remove a document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDocuments(cmd, opts, false, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				id, err := parseContentID(args[0])
				if err != nil {
					return outputCommandError(f, ErrCodeGeneric, err)
				}
				removed, err := st.DeleteDocument(ctx, id)
				if err != nil {
					return outputCommandError(f, ErrCodeStore, err)
				}
				if !removed {
					_ = f.Error(ErrCodeNotFound, (&store.NotFoundError{ID: id}).Error(), nil)
					return NewExitError(ExitFailure, fmt.Sprintf("content id %d not found", id))
				}
				return f.Success(fmt.Sprintf("removed content id %d", id))
			})
		},
	}
}

// outputDocuments prints docs one per line, or as a JSON list.
func outputDocuments(f *OutputFormatter, docs []store.Document) error {
	out := make([]DocumentOutput, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentOutput(d.ID, d.Ref))
	}
	if f.Format == "json" {
		return f.Success(out)
	}
	if len(out) == 0 {
		fmt.Fprintln(f.Writer, "No documents.")
	}
	for _, d := range out {
		fmt.Fprintln(f.Writer, d)
	}
	return nil
}

// String renders a document in text output.
func (d DocumentOutput) String() string {
	return fmt.Sprintf("%d\t%s", d.ID, d.Reference)
}

// withDocuments opens the database of opts for the duration of fn. Only add
// may create a missing database.
func withDocuments(cmd *cobra.Command, opts *DocsOptions, create bool, fn func(context.Context, *OutputFormatter, *store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var (
		st  *store.Store
		err error
	)
	if create {
		st, err = store.Open(opts.Database)
	} else {
		st, err = openDocuments(opts.Database)
	}
	if err != nil {
		return outputCommandError(f, ErrCodeStore, err)
	}
	defer st.Close()

	return fn(ctx, f, st)
}

func parseContentID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid content id %q", s)
	}
	return id, nil
}
