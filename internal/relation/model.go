package relation

import (
	"context"

	"github.com/roach88/relq/internal/ir"
)

// DefaultPrimaryKey is used when a model does not name its primary key.
const DefaultPrimaryKey = "id"

// NamedQuery is a class-level query registered by a model. It runs with the
// calling relation installed as the model's ambient scope in ctx.
type NamedQuery func(ctx context.Context, args ...ir.IRValue) (*Relation, error)

// Model is the contract a collection type offers the relation layer.
type Model interface {
	// Name is the stable identity used as the scope registry key.
	Name() string

	// PrimaryKey names the attribute Find looks up. Empty means "id".
	PrimaryKey() string

	// Query returns the named query registered under name.
	Query(name string) (NamedQuery, bool)
}

// Source yields the base sequence of records. It is read again on every
// materialization and its result must not be modified by the caller.
type Source interface {
	Records() []ir.Record
}

// SliceSource is a fixed record sequence.
type SliceSource []ir.Record

// Records implements Source.
func (s SliceSource) Records() []ir.Record {
	return s
}

// StaticModel is a Model with a fixed set of named queries.
type StaticModel struct {
	ModelName string
	Key       string
	Queries   map[string]NamedQuery
}

// Name implements Model.
func (m StaticModel) Name() string { return m.ModelName }

// PrimaryKey implements Model.
func (m StaticModel) PrimaryKey() string { return m.Key }

// Query implements Model.
func (m StaticModel) Query(name string) (NamedQuery, bool) {
	q, ok := m.Queries[name]
	return q, ok
}

func primaryKey(m Model) string {
	if m == nil {
		return DefaultPrimaryKey
	}
	if k := m.PrimaryKey(); k != "" {
		return k
	}
	return DefaultPrimaryKey
}
