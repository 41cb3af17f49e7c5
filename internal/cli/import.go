package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/collection"
	"github.com/roach88/relq/internal/dataset"
	"github.com/roach88/relq/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	DB string
}

// ImportedCollection reports one imported dataset.
type ImportedCollection struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Source  string `json:"source"`
}

// ImportResult is the payload of the import command.
type ImportResult struct {
	DB          string               `json:"db"`
	Collections []ImportedCollection `json:"collections"`
}

func (r ImportResult) String() string {
	lines := make([]string, len(r.Collections))
	for i, c := range r.Collections {
		lines[i] = fmt.Sprintf("imported %s (%d records) from %s", c.Name, c.Records, c.Source)
	}
	return strings.Join(lines, "\n")
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <dataset>...",
		Short: "Import datasets into a SQLite database",
		Long: `Import each dataset's records into a SQLite database, replacing any
collection of the same name. The database is created if needed.

Named scopes are not stored; pass the dataset alongside --db to query
with them.

Examples:
  relq import --db projects.db projects.yaml
  relq import --db all.db projects.cue tags.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", rootOpts.Env.DB, "SQLite database path (required, env RELQ_DB)")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions, paths []string) error {
	if opts.DB == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Load everything first so a bad file leaves the database untouched.
	collections := make([]*collection.Collection, 0, len(paths))
	for _, path := range paths {
		ds, err := dataset.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load dataset", err)
		}
		c, err := ds.Collection(collection.WithLogger(opts.Logger()))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build collection", err)
		}
		collections = append(collections, c)
	}

	s, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer s.Close()

	result := ImportResult{DB: opts.DB, Collections: make([]ImportedCollection, 0, len(collections))}
	for i, c := range collections {
		if err := s.Import(ctx, c); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to import %s", paths[i]), err)
		}
		formatter.VerboseLog("imported %s from %s", c.Name(), paths[i])
		result.Collections = append(result.Collections, ImportedCollection{
			Name:    c.Name(),
			Records: c.Len(),
			Source:  paths[i],
		})
	}

	return formatter.Success(result)
}
