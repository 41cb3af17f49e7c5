package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/relq/internal/collection"
	"github.com/roach88/relq/internal/dataset"
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/relation"
	"github.com/roach88/relq/internal/store"
)

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger handed to the collection. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithStore cross-checks against an existing store instead of a temporary
// one. The scenario's collection is imported into it.
func WithStore(s *store.Store) Option {
	return func(r *runner) {
		r.store = s
	}
}

type runner struct {
	logger  *slog.Logger
	store   *store.Store
	cleanup func()
}

// Run executes a scenario and returns the result.
//
// A failed expectation is recorded in Result; the returned error is reserved
// for scenarios that cannot run at all (unreadable dataset, store failure).
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (result *Result, err error) {
	r := &runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}
	defer func() {
		if r.cleanup != nil {
			r.cleanup()
		}
	}()

	ds, err := scenarioDataset(scenario)
	if err != nil {
		return nil, err
	}
	c, err := ds.Collection(collection.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("build collection: %w", err)
	}

	if needsStore(scenario) {
		if err := r.openStore(ctx, c); err != nil {
			return nil, err
		}
	}

	ctx = relation.WithRegistry(ctx)
	result = NewResult()
	for _, q := range scenario.Queries {
		got, err := r.runQuery(ctx, c, q)
		if err != nil {
			return nil, err
		}
		result.Queries = append(result.Queries, got)
		for _, failure := range checkExpect(q, got, c.PrimaryKey()) {
			result.AddError(failure.Error())
		}
	}
	return result, nil
}

func scenarioDataset(s *Scenario) (*dataset.Dataset, error) {
	if s.Collection != nil {
		return s.Collection, nil
	}
	ds, err := dataset.Load(s.Dataset)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return ds, nil
}

func needsStore(s *Scenario) bool {
	for _, q := range s.Queries {
		if q.CrossCheck {
			return true
		}
	}
	return false
}

func (r *runner) openStore(ctx context.Context, c *collection.Collection) error {
	if r.store == nil {
		dir, err := os.MkdirTemp("", "relq-harness-")
		if err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
		s, err := store.Open(filepath.Join(dir, "harness.db"))
		if err != nil {
			os.RemoveAll(dir)
			return fmt.Errorf("open store: %w", err)
		}
		r.store = s
		r.cleanup = func() {
			s.Close()
			os.RemoveAll(dir)
		}
	}
	if err := r.store.Import(ctx, c); err != nil {
		return fmt.Errorf("import collection: %w", err)
	}
	return nil
}

// runQuery applies the chain and terminal of q. Relation errors are part of
// the outcome; only store failures are returned.
func (r *runner) runQuery(ctx context.Context, c *collection.Collection, q Query) (QueryResult, error) {
	got := QueryResult{Name: q.Name}

	rel, err := applyChain(ctx, c.All(ctx), q.Chain)
	if rel != nil {
		got.Relation = rel.String()
	}
	if err == nil {
		err = runTerminal(rel, q, &got)
	}
	if err != nil {
		got.Err = err
		got.ErrorCode = errorCode(err)
		return got, nil
	}

	if q.CrossCheck {
		records, err := r.store.Query(ctx, rel)
		if err != nil {
			return got, fmt.Errorf("query %q: sqlite: %w", q.Name, err)
		}
		got.SQLRecords = records
	}
	return got, nil
}

// applyChain runs each step in order. The partially built relation is
// returned alongside an error so the failure can be described.
func applyChain(ctx context.Context, rel *relation.Relation, chain []Step) (*relation.Relation, error) {
	for i, step := range chain {
		next, err := applyStep(ctx, rel, step)
		if err != nil {
			return rel, fmt.Errorf("chain[%d]: %w", i, err)
		}
		rel = next
	}
	return rel, rel.Err()
}

func applyStep(ctx context.Context, rel *relation.Relation, step Step) (*relation.Relation, error) {
	switch {
	case step.Where != nil:
		c, err := step.Where.Criteria()
		if err != nil {
			return nil, err
		}
		return rel.Where(c), nil
	case step.WhereNot != nil:
		c, err := step.WhereNot.Criteria()
		if err != nil {
			return nil, err
		}
		return rel.WhereNot(c), nil
	case step.Order != nil:
		return rel.OrderDir(step.Order...), nil
	case step.Offset != nil:
		return rel.Offset(*step.Offset), nil
	case step.Limit != nil:
		return rel.Limit(*step.Limit), nil
	case step.Except != nil:
		clauses, err := parseClauses(step.Except)
		if err != nil {
			return nil, err
		}
		return rel.Except(clauses...), nil
	case step.Only != nil:
		clauses, err := parseClauses(step.Only)
		if err != nil {
			return nil, err
		}
		return rel.Only(clauses...), nil
	case step.All:
		return rel.All(), nil
	case step.Scope != "":
		args, err := expectedIDs(step.Args)
		if err != nil {
			return nil, err
		}
		return rel.Scope(ctx, step.Scope, args...)
	default:
		return nil, errors.New("empty step")
	}
}

func parseClauses(names []string) ([]relation.Clause, error) {
	out := make([]relation.Clause, len(names))
	for i, name := range names {
		c, err := relation.ParseClause(name)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func runTerminal(rel *relation.Relation, q Query, got *QueryResult) error {
	switch q.terminal() {
	case TerminalRecords:
		records, err := rel.Records()
		if err != nil {
			return err
		}
		got.Records = records
	case TerminalFirst, TerminalLast:
		first := rel.First
		if q.terminal() == TerminalLast {
			first = rel.Last
		}
		rec, found, err := first()
		if err != nil {
			return err
		}
		got.setFound(rec, found)
	case TerminalCount:
		n, err := rel.Count()
		if err != nil {
			return err
		}
		got.Count = &n
	case TerminalEmpty:
		empty, err := rel.IsEmpty()
		if err != nil {
			return err
		}
		got.Empty = &empty
	case TerminalFind:
		id, err := ir.FromGo(q.Args[0])
		if err != nil {
			return err
		}
		rec, err := rel.Find(id)
		if err != nil {
			return err
		}
		got.setFound(rec, true)
	case TerminalFindBy:
		attrs, err := ir.ObjectFromGo(q.Args[0].(map[string]any))
		if err != nil {
			return err
		}
		rec, found, err := rel.FindBy(relation.EqMap(attrs))
		if err != nil {
			return err
		}
		got.setFound(rec, found)
	default:
		return fmt.Errorf("unknown terminal %q", q.Terminal)
	}
	return nil
}

func (q *QueryResult) setFound(rec ir.Record, found bool) {
	q.Found = &found
	if found {
		q.Records = []ir.Record{rec}
	}
}

// errorCode classifies err by its relation error code.
func errorCode(err error) string {
	var relErr *relation.Error
	if errors.As(err, &relErr) {
		return string(relErr.Code)
	}
	return "ERROR"
}
