package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/relq/internal/collection"
	"github.com/roach88/relq/internal/dataset"
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/relation"
	"github.com/roach88/relq/internal/store"
)

// SourceOptions selects where a command's collection comes from.
//
// A dataset alone is evaluated in memory. A database alone needs
// --collection and carries no named scopes. Both together take the
// dataset's definition (name, key, scopes) and the database's records.
type SourceOptions struct {
	Dataset    string
	DB         string
	Collection string
}

func (o *SourceOptions) addFlags(cmd *cobra.Command, defaults Config) {
	cmd.Flags().StringVarP(&o.Dataset, "dataset", "d", "", "dataset file (.yaml, .yml, .json or .cue)")
	cmd.Flags().StringVar(&o.DB, "db", defaults.DB, "SQLite database written by relq import (env RELQ_DB)")
	cmd.Flags().StringVar(&o.Collection, "collection", "", "collection name in --db (default: the dataset's name)")
}

// source is a loaded collection plus the store it came from, if any.
type source struct {
	collection *collection.Collection
	store      *store.Store
}

func (s *source) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// loadSource builds the collection described by opts.
func loadSource(ctx context.Context, opts SourceOptions, logger *slog.Logger) (*source, error) {
	if opts.Dataset == "" && opts.DB == "" {
		return nil, NewExitError(ExitCommandError, "one of --dataset or --db is required")
	}

	var c *collection.Collection
	if opts.Dataset != "" {
		ds, err := dataset.Load(opts.Dataset)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load dataset", err)
		}
		c, err = ds.Collection(collection.WithLogger(logger))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to build collection", err)
		}
	}
	if opts.DB == "" {
		return &source{collection: c}, nil
	}

	s, err := openExistingStore(opts.DB)
	if err != nil {
		return nil, err
	}
	name := opts.Collection
	if name == "" && c != nil {
		name = c.Name()
	}
	if name == "" {
		s.Close()
		return nil, NewExitError(ExitCommandError, "--collection is required with --db and no --dataset")
	}

	if c == nil {
		c, err = s.Load(ctx, name, collection.WithLogger(logger))
	} else {
		var records []ir.Record
		records, err = s.ReadRecords(ctx, name)
		if err == nil {
			c.Replace(records)
		}
	}
	if err != nil {
		s.Close()
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("collection %q not found in %s", name, opts.DB), err)
		}
		return nil, WrapExitError(ExitCommandError, "failed to read collection", err)
	}
	return &source{collection: c, store: s}, nil
}

// openExistingStore opens a database without creating a new file.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return s, nil
}

// ChainOptions are the relation-building flags shared by query and explain.
type ChainOptions struct {
	Scopes   []string // name or name:arg,arg
	Where    []string // attr=value
	WhereNot []string // attr=value, each flag excluded on its own
	Order    string   // attr[:dir],attr[:dir]
	Offset   int
	Limit    int
}

func (o *ChainOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.Scopes, "scope", "s", nil, "apply a named scope, e.g. urgent or in_state:running (repeatable)")
	cmd.Flags().StringArrayVarP(&o.Where, "where", "w", nil, "attribute equality attr=value (repeatable, all must hold)")
	cmd.Flags().StringArrayVar(&o.WhereNot, "where-not", nil, "exclude records with attr=value (repeatable)")
	cmd.Flags().StringVarP(&o.Order, "order", "o", "", "ordering, e.g. priority:desc,id")
	cmd.Flags().IntVar(&o.Offset, "offset", 0, "records to skip")
	cmd.Flags().IntVar(&o.Limit, "limit", 0, "maximum records to return")
}

// build applies the chain to c's default relation: scopes first, then
// where, where-not, order, offset and limit. Flag-level builder errors are
// returned right away rather than deferred to evaluation.
func (o *ChainOptions) build(ctx context.Context, cmd *cobra.Command, c *collection.Collection) (*relation.Relation, error) {
	rel := c.All(ctx)

	for _, spec := range o.Scopes {
		name, args, err := parseScope(spec)
		if err != nil {
			return nil, NewExitError(ExitCommandError, err.Error())
		}
		rel, err = rel.Scope(ctx, name, args...)
		if err != nil {
			return nil, relationExitError(fmt.Sprintf("scope %s failed", name), err)
		}
	}

	if len(o.Where) > 0 {
		pairs, err := parseAssignments(o.Where)
		if err != nil {
			return nil, NewExitError(ExitCommandError, err.Error())
		}
		rel = rel.Where(relation.Eq(pairs...))
	}
	for _, raw := range o.WhereNot {
		pairs, err := parseAssignments([]string{raw})
		if err != nil {
			return nil, NewExitError(ExitCommandError, err.Error())
		}
		rel = rel.WhereNot(relation.Eq(pairs...))
	}

	if o.Order != "" {
		rel = rel.OrderDir(order.SpecPairs(o.Order)...)
	}
	if cmd.Flags().Changed("offset") {
		rel = rel.Offset(o.Offset)
	}
	if cmd.Flags().Changed("limit") {
		rel = rel.Limit(o.Limit)
	}

	if err := rel.Err(); err != nil {
		return nil, relationExitError("invalid query", err)
	}
	return rel, nil
}

// parseScope splits "name:arg,arg" into a scope name and its arguments.
func parseScope(spec string) (string, []ir.IRValue, error) {
	name, rawArgs, hasArgs := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("invalid scope %q: missing name", spec)
	}
	if !hasArgs {
		return name, nil, nil
	}
	var args []ir.IRValue
	for _, raw := range strings.Split(rawArgs, ",") {
		v, err := parseValue(strings.TrimSpace(raw))
		if err != nil {
			return "", nil, fmt.Errorf("invalid scope %q: %w", spec, err)
		}
		args = append(args, v)
	}
	return name, args, nil
}

// parseAssignments parses attr=value flags in order.
func parseAssignments(raw []string) ([]ir.IRPair, error) {
	pairs := make([]ir.IRPair, 0, len(raw))
	for _, a := range raw {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid criteria %q: expected attr=value", a)
		}
		v, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("invalid criteria %q: %w", a, err)
		}
		pairs = append(pairs, ir.O(key, v))
	}
	return pairs, nil
}

// parseValue reads a flag value as a YAML scalar, so 3 is an integer, true
// a boolean and null the null value. Quote a value to force a string:
// state='"3"'. The empty value is the empty string.
func parseValue(raw string) (ir.IRValue, error) {
	if raw == "" {
		return ir.IRString(""), nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", raw, err)
	}
	switch v.(type) {
	case []any, map[string]any:
		// Flow collections are taken literally.
		return ir.IRString(raw), nil
	}
	return ir.FromGo(v)
}
