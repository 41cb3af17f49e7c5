// Package collection provides an in-memory record collection that serves as
// a relation.Model and relation.Source.
//
// A Collection owns its records and its named queries. Its entry points
// (Where, Order, Find, ...) start from All, which is the ambient scope
// installed for the collection in the context, or the default relation
// over every record when none is installed.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/relation"
)

// Collection is a named, mutable sequence of records.
//
// Thread-safety: All methods are safe for concurrent use. Relations read a
// snapshot of the records each time they materialize.
type Collection struct {
	name       string
	primaryKey string
	logger     *slog.Logger

	mu      sync.RWMutex
	records []ir.Record
	queries map[string]relation.NamedQuery
}

// Option configures a Collection.
type Option func(*Collection)

// WithPrimaryKey sets the attribute Find looks up. Default: "id".
func WithPrimaryKey(key string) Option {
	return func(c *Collection) {
		c.primaryKey = key
	}
}

// WithRecords sets the initial records. The slice is copied.
func WithRecords(records []ir.Record) Option {
	return func(c *Collection) {
		c.records = slices.Clone(records)
	}
}

// WithLogger sets the logger handed to every relation over the collection.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty collection named name.
func New(name string, opts ...Option) *Collection {
	c := &Collection{
		name:       name,
		primaryKey: relation.DefaultPrimaryKey,
		logger:     slog.Default(),
		queries:    make(map[string]relation.NamedQuery),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements relation.Model.
func (c *Collection) Name() string { return c.name }

// PrimaryKey implements relation.Model.
func (c *Collection) PrimaryKey() string { return c.primaryKey }

// Query implements relation.Model.
func (c *Collection) Query(name string) (relation.NamedQuery, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.queries[name]
	return q, ok
}

// Records implements relation.Source. It returns a snapshot copy.
func (c *Collection) Records() []ir.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.records)
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Append adds records at the end.
func (c *Collection) Append(records ...ir.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
}

// Replace swaps the whole record sequence. The slice is copied.
func (c *Collection) Replace(records []ir.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = slices.Clone(records)
}

// Define registers a named query. Names must be unique per collection.
func (c *Collection) Define(name string, q relation.NamedQuery) error {
	if name == "" {
		return fmt.Errorf("collection %s: query name must not be empty", c.name)
	}
	if q == nil {
		return fmt.Errorf("collection %s: query %q has no function", c.name, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.queries[name]; exists {
		return fmt.Errorf("collection %s: query %q already defined", c.name, name)
	}
	c.queries[name] = q
	c.logger.Debug("defined named query", "model", c.name, "query", name)
	return nil
}

// QueryNames returns the registered query names in sorted order.
func (c *Collection) QueryNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.queries))
	for name := range c.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relation returns the default relation over every record, ignoring any
// ambient scope.
func (c *Collection) Relation() *relation.Relation {
	return relation.New(c, c, relation.WithLogger(c.logger))
}

// All returns the ambient scope installed for this collection in ctx, or
// the default relation.
func (c *Collection) All(ctx context.Context) *relation.Relation {
	if scope := relation.CurrentScope(ctx, c.name); scope != nil {
		return scope
	}
	return c.Relation()
}

// Load returns a child of ctx whose ambient scope for this collection is a
// relation over records. Entry points called with the returned context see
// only these records; ctx is unchanged.
func (c *Collection) Load(ctx context.Context, records []ir.Record) context.Context {
	src := relation.SliceSource(slices.Clone(records))
	c.logger.Debug("loaded ambient records", "model", c.name, "records", len(src))
	return relation.Install(ctx, relation.New(c, src, relation.WithLogger(c.logger)))
}

// Where is All(ctx).Where(criteria).
func (c *Collection) Where(ctx context.Context, criteria relation.Criteria) *relation.Relation {
	return c.All(ctx).Where(criteria)
}

// WhereNot is All(ctx).WhereNot(criteria).
func (c *Collection) WhereNot(ctx context.Context, criteria relation.Criteria) *relation.Relation {
	return c.All(ctx).WhereNot(criteria)
}

// Order is All(ctx).Order(clause).
func (c *Collection) Order(ctx context.Context, clause order.Clause) *relation.Relation {
	return c.All(ctx).Order(clause)
}

// OrderBy is All(ctx).OrderBy(attrs...).
func (c *Collection) OrderBy(ctx context.Context, attrs ...string) *relation.Relation {
	return c.All(ctx).OrderBy(attrs...)
}

// OrderDir is All(ctx).OrderDir(pairs...).
func (c *Collection) OrderDir(ctx context.Context, pairs ...order.Pair) *relation.Relation {
	return c.All(ctx).OrderDir(pairs...)
}

// Offset is All(ctx).Offset(n).
func (c *Collection) Offset(ctx context.Context, n int) *relation.Relation {
	return c.All(ctx).Offset(n)
}

// Limit is All(ctx).Limit(n).
func (c *Collection) Limit(ctx context.Context, n int) *relation.Relation {
	return c.All(ctx).Limit(n)
}

// Find is All(ctx).Find(id).
func (c *Collection) Find(ctx context.Context, id ir.IRValue) (ir.Record, error) {
	return c.All(ctx).Find(id)
}

// FindBy is All(ctx).FindBy(criteria).
func (c *Collection) FindBy(ctx context.Context, criteria relation.Criteria) (ir.Record, bool, error) {
	return c.All(ctx).FindBy(criteria)
}

// First is All(ctx).First().
func (c *Collection) First(ctx context.Context) (ir.Record, bool, error) {
	return c.All(ctx).First()
}

// Last is All(ctx).Last().
func (c *Collection) Last(ctx context.Context) (ir.Record, bool, error) {
	return c.All(ctx).Last()
}

// Count is All(ctx).Count().
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.All(ctx).Count()
}

// Scope runs the named query op against All(ctx).
func (c *Collection) Scope(ctx context.Context, op string, args ...ir.IRValue) (*relation.Relation, error) {
	return c.All(ctx).Scope(ctx, op, args...)
}
