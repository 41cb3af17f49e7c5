package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/predicate"
	"github.com/roach88/relq/internal/querysql"
	"github.com/roach88/relq/internal/relation"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	SourceOptions
	ChainOptions
}

// ExplainOutput describes a relation without evaluating it.
type ExplainOutput struct {
	Relation string   `json:"relation"`
	Portable bool     `json:"portable"`
	SQL      string   `json:"sql,omitempty"`
	Params   []any    `json:"params,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (e ExplainOutput) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "relation: %s\n", e.Relation)
	if e.Portable {
		fmt.Fprintf(&sb, "sql:      %s\n", e.SQL)
		fmt.Fprintf(&sb, "params:   %v", e.Params)
	} else {
		sb.WriteString("sql:      (not portable)")
	}
	for _, w := range e.Warnings {
		fmt.Fprintf(&sb, "\nwarning:  %s", w)
	}
	return sb.String()
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show a relation and the SQL it compiles to",
		Long: `Build a relation from the same flags as query and print its
description and the parameterized SQLite statement evaluating it. No
records are read.

Examples:
  relq explain -d projects.yaml --scope urgent
  relq explain -d projects.yaml --where state=completed --offset 1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, opts)
		},
	}

	opts.SourceOptions.addFlags(cmd, rootOpts.Env)
	opts.ChainOptions.addFlags(cmd)

	return cmd
}

func runExplain(cmd *cobra.Command, opts *ExplainOptions) error {
	ctx := relation.WithRegistry(cmd.Context())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
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

	out, err := explain(rel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile relation", err)
	}
	return formatter.Success(out)
}

func explain(rel *relation.Relation) (ExplainOutput, error) {
	out := ExplainOutput{
		Relation: rel.String(),
		Warnings: predicate.Validate(rel.Predicate()).Warnings,
	}

	query, params, err := querysql.NewSQLCompiler().Compile(rel)
	switch {
	case errors.Is(err, querysql.ErrNotPortable):
		return out, nil
	case err != nil:
		return out, err
	}
	out.Portable = true
	out.SQL = query
	out.Params = params
	return out, nil
}
