package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/relation"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	SourceOptions
	ChainOptions

	Count bool
	First bool
	Last  bool
	Find  string
	SQL   bool // evaluate in SQLite instead of memory
}

// QueryOutput is the JSON payload of the query command.
type QueryOutput struct {
	Relation string        `json:"relation"`
	Records  []ir.IRObject `json:"records,omitempty"`
	Count    *int          `json:"count,omitempty"`
	Found    *bool         `json:"found,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate a relation over a collection",
		Long: `Build a relation from flags and print its records.

Named scopes run first, in flag order. Criteria, ordering and pagination
are applied after them.

Exit codes:
  0 - Success
  1 - Query failure (record not found, missing attribute)
  2 - Command error (bad flags, invalid direction, unknown scope)

Examples:
  relq query -d projects.yaml --where state=completed
  relq query -d projects.yaml --where-not state=completed --order priority:desc,id
  relq query -d projects.yaml --scope in_state:running --count
  relq query -d projects.yaml --find 3 --format json
  relq query --db projects.db --collection Project --limit 2 --sql`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts)
		},
	}

	opts.SourceOptions.addFlags(cmd, rootOpts.Env)
	opts.ChainOptions.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the number of records")
	cmd.Flags().BoolVar(&opts.First, "first", false, "print the first record")
	cmd.Flags().BoolVar(&opts.Last, "last", false, "print the last record")
	cmd.Flags().StringVar(&opts.Find, "find", "", "print the record with this primary key")
	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "evaluate in SQLite (requires --db)")
	cmd.MarkFlagsMutuallyExclusive("count", "first", "last", "find", "sql")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	ctx := relation.WithRegistry(cmd.Context())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.SQL && opts.DB == "" {
		return NewExitError(ExitCommandError, "--sql requires --db")
	}

	src, err := loadSource(ctx, opts.SourceOptions, opts.Logger())
	if err != nil {
		return err
	}
	defer src.Close()

	rel, err := opts.ChainOptions.build(ctx, cmd, src.collection)
	if err != nil {
		return err
	}
	formatter.VerboseLog("relation: %s", rel)

	out := QueryOutput{Relation: rel.String()}
	var text any
	switch {
	case opts.Count:
		n, err := rel.Count()
		if err != nil {
			return failQuery(formatter, err)
		}
		out.Count = &n
		text = n
	case opts.First, opts.Last:
		terminal := rel.First
		if opts.Last {
			terminal = rel.Last
		}
		rec, found, err := terminal()
		if err != nil {
			return failQuery(formatter, err)
		}
		out.Found = &found
		var records []ir.Record
		if found {
			records = []ir.Record{rec}
		}
		out.Records = recordObjects(records)
		text = recordLines(records)
	case cmd.Flags().Changed("find"):
		id, err := parseValue(opts.Find)
		if err != nil {
			return NewExitError(ExitCommandError, err.Error())
		}
		rec, err := rel.Find(id)
		if err != nil {
			return failQuery(formatter, err)
		}
		found := true
		out.Found = &found
		out.Records = recordObjects([]ir.Record{rec})
		text = recordLines{rec}
	default:
		var records []ir.Record
		if opts.SQL {
			records, err = src.store.Query(ctx, rel)
		} else {
			records, err = rel.Records()
		}
		if err != nil {
			return failQuery(formatter, err)
		}
		n := len(records)
		out.Count = &n
		out.Records = recordObjects(records)
		text = recordLines(records)
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}
	return formatter.Success(text)
}

// failQuery reports an evaluation error and returns the matching exit error.
func failQuery(formatter *OutputFormatter, err error) error {
	if formatter.Format == "json" {
		if ferr := formatter.Error(errorCode(err), err.Error(), nil); ferr != nil {
			return ferr
		}
	}
	return relationExitError("query failed", err)
}
