package relation

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/predicate"
)

// Relation is an immutable query over a model's records.
type Relation struct {
	model      Model
	source     Source
	where      predicate.Predicate
	order      order.Clause
	offset     *int
	limit      *int
	extensions []Extension
	logger     *slog.Logger
	err        error
}

// Option configures a new Relation.
type Option func(*Relation)

// WithLogger sets the logger used for materialization diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relation) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns the default relation over source: no filter, no order, no
// pagination and no extensions.
func New(model Model, source Source, opts ...Option) *Relation {
	if source == nil {
		source = SliceSource(nil)
	}
	r := &Relation{
		model:  model,
		source: source,
		where:  predicate.True(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// clone is the only way builders derive relations. Slice fields are always
// replaced, never appended to in place, so sharing them is safe.
func (r *Relation) clone() *Relation {
	c := *r
	return &c
}

func (r *Relation) fail(err error) *Relation {
	c := r.clone()
	if c.err == nil {
		c.err = err
	}
	return c
}

// Model returns the model this relation queries.
func (r *Relation) Model() Model { return r.model }

// Source returns the record source shared by every relation derived from r.
func (r *Relation) Source() Source { return r.source }

// Err returns the first error recorded while building r.
func (r *Relation) Err() error { return r.err }

// Predicate returns the accumulated filter.
func (r *Relation) Predicate() predicate.Predicate { return r.where }

// OrderClause returns the accumulated ordering.
func (r *Relation) OrderClause() order.Clause { return r.order }

// OffsetValue returns the offset and whether one was set.
func (r *Relation) OffsetValue() (int, bool) {
	if r.offset == nil {
		return 0, false
	}
	return *r.offset, true
}

// LimitValue returns the limit and whether one was set.
func (r *Relation) LimitValue() (int, bool) {
	if r.limit == nil {
		return 0, false
	}
	return *r.limit, true
}

// Extensions returns the extension bundles in the order they were added.
func (r *Relation) Extensions() []Extension {
	out := make([]Extension, len(r.extensions))
	copy(out, r.extensions)
	return out
}

func (r *Relation) modelName() string {
	if r.model == nil {
		return ""
	}
	return r.model.Name()
}

// All returns an equivalent fresh relation.
func (r *Relation) All() *Relation {
	return r.clone()
}

// Where narrows r by criteria. Empty criteria return an equivalent relation.
func (r *Relation) Where(c Criteria) *Relation {
	out := r.clone()
	if c.IsEmpty() {
		return out
	}
	out.where = predicate.Combine(r.where, c.Predicate())
	return out
}

// WhereChain returns the helper for negated filters, as in
// r.WhereChain().Not(criteria).
func (r *Relation) WhereChain() WhereChain {
	return WhereChain{rel: r}
}

// WhereNot narrows r to the records that do not satisfy criteria as a whole.
func (r *Relation) WhereNot(c Criteria) *Relation {
	return r.WhereChain().Not(c)
}

// Order appends clause to the current ordering.
func (r *Relation) Order(clause order.Clause) *Relation {
	out := r.clone()
	out.order = order.Combine(r.order, clause)
	return out
}

// OrderBy appends an ascending key per attribute.
func (r *Relation) OrderBy(attrs ...string) *Relation {
	return r.Order(order.By(attrs...))
}

// OrderDir appends one key per pair with the pair's direction. An invalid
// direction token is recorded as an INVALID_DIRECTION error, an empty
// attribute name as INVALID_ARGUMENT.
func (r *Relation) OrderDir(pairs ...order.Pair) *Relation {
	clause, err := order.Parse(pairs...)
	if err != nil {
		code := ErrCodeInvalidArgument
		if errors.Is(err, order.ErrInvalidDirection) {
			code = ErrCodeInvalidDirection
		}
		return r.fail(&Error{
			Code:    code,
			Message: err.Error(),
			Model:   r.modelName(),
			Err:     err,
		})
	}
	return r.Order(clause)
}

// Offset replaces the number of leading records to skip.
func (r *Relation) Offset(n int) *Relation {
	if n < 0 {
		return r.fail(invalidArgument(r.modelName(), "offset must not be negative, got %d", n))
	}
	out := r.clone()
	out.offset = &n
	return out
}

// Limit replaces the maximum number of records returned.
func (r *Relation) Limit(n int) *Relation {
	if n < 0 {
		return r.fail(invalidArgument(r.modelName(), "limit must not be negative, got %d", n))
	}
	out := r.clone()
	out.limit = &n
	return out
}

// Extending appends extension bundles. Later bundles shadow earlier ones.
func (r *Relation) Extending(exts ...Extension) *Relation {
	out := r.clone()
	out.extensions = make([]Extension, 0, len(r.extensions)+len(exts))
	out.extensions = append(out.extensions, r.extensions...)
	out.extensions = append(out.extensions, exts...)
	return out
}

// Clause names a clause category accepted by Only and Except.
type Clause string

const (
	ClauseWhere  Clause = "where"
	ClauseOffset Clause = "offset"
	ClauseLimit  Clause = "limit"
)

// ParseClause validates a clause name.
func ParseClause(name string) (Clause, error) {
	switch c := Clause(strings.ToLower(name)); c {
	case ClauseWhere, ClauseOffset, ClauseLimit:
		return c, nil
	default:
		return "", fmt.Errorf("unknown clause %q: expected where, offset or limit", name)
	}
}

// Except resets the named clauses to their defaults. Ordering and
// extensions are kept.
func (r *Relation) Except(clauses ...Clause) *Relation {
	drop, err := r.clauseSet(clauses)
	if err != nil {
		return r.fail(err)
	}
	return r.keep(func(c Clause) bool { return !drop[c] })
}

// Only keeps the named clauses and resets the other ones of where, offset
// and limit. Ordering and extensions are kept.
func (r *Relation) Only(clauses ...Clause) *Relation {
	keep, err := r.clauseSet(clauses)
	if err != nil {
		return r.fail(err)
	}
	return r.keep(func(c Clause) bool { return keep[c] })
}

func (r *Relation) clauseSet(clauses []Clause) (map[Clause]bool, error) {
	set := make(map[Clause]bool, len(clauses))
	for _, c := range clauses {
		parsed, err := ParseClause(string(c))
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalidArgument, Message: err.Error(), Model: r.modelName(), Err: err}
		}
		set[parsed] = true
	}
	return set, nil
}

func (r *Relation) keep(kept func(Clause) bool) *Relation {
	out := r.clone()
	if !kept(ClauseWhere) {
		out.where = predicate.True()
	}
	if !kept(ClauseOffset) {
		out.offset = nil
	}
	if !kept(ClauseLimit) {
		out.limit = nil
	}
	return out
}

// String describes the relation in a SQL-like form for logs and explain.
func (r *Relation) String() string {
	var sb strings.Builder
	sb.WriteString(r.modelName())
	if !predicate.IsIdentity(r.where) {
		sb.WriteString(" WHERE ")
		sb.WriteString(predicate.String(r.where))
	}
	if !r.order.IsEmpty() {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(r.order.String())
	}
	if n, ok := r.LimitValue(); ok {
		fmt.Fprintf(&sb, " LIMIT %d", n)
	}
	if n, ok := r.OffsetValue(); ok {
		fmt.Fprintf(&sb, " OFFSET %d", n)
	}
	for _, ext := range r.extensions {
		sb.WriteString(" EXTENDING ")
		sb.WriteString(ext.Name)
	}
	return sb.String()
}
