package relation

import (
	"context"

	"github.com/google/uuid"

	"github.com/roach88/relq/internal/ir"
)

// ExtensionFunc is an operation contributed by an extension. It receives the
// materialized records of the relation it was called on.
type ExtensionFunc func(ctx context.Context, records []ir.Record, args ...ir.IRValue) (any, error)

// Extension is a named bundle of operations attached with Extending.
type Extension struct {
	Name  string
	Funcs map[string]ExtensionFunc
}

// Inline wraps ad hoc operations in an anonymous bundle.
func Inline(funcs map[string]ExtensionFunc) Extension {
	return Extension{Name: "inline-" + uuid.NewString(), Funcs: funcs}
}

// Declares reports whether the bundle provides op.
func (e Extension) Declares(op string) bool {
	_, ok := e.Funcs[op]
	return ok
}

// extension resolves op against the bundles, most recently added first.
func (r *Relation) extension(op string) (Extension, ExtensionFunc, bool) {
	for i := len(r.extensions) - 1; i >= 0; i-- {
		if fn, ok := r.extensions[i].Funcs[op]; ok && fn != nil {
			return r.extensions[i], fn, true
		}
	}
	return Extension{}, nil, false
}
