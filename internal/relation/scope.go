package relation

import (
	"context"
	"maps"

	"github.com/authzed/ctxkey"
)

var registryKey = ctxkey.New[*Registry]()

// Registry maps model names to the relation installed as their ambient
// scope. A registry is never modified once it is attached to a context:
// installing a scope derives a new registry for a child context, so the
// parent context and every goroutine sharing it keep what they had.
type Registry struct {
	scopes map[string]*Relation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Get returns the relation installed for model.
func (g *Registry) Get(model string) (*Relation, bool) {
	if g == nil {
		return nil, false
	}
	rel, ok := g.scopes[model]
	return rel, ok
}

// Len returns the number of installed scopes.
func (g *Registry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.scopes)
}

// with returns a copy of g with rel installed for model.
func (g *Registry) with(model string, rel *Relation) *Registry {
	var scopes map[string]*Relation
	if g != nil {
		scopes = maps.Clone(g.scopes)
	}
	if scopes == nil {
		scopes = make(map[string]*Relation, 1)
	}
	scopes[model] = rel
	return &Registry{scopes: scopes}
}

// WithRegistry starts a new execution context with no ambient scopes.
func WithRegistry(ctx context.Context) context.Context {
	return registryKey.Set(ctx, NewRegistry())
}

// Detach returns a context for a goroutine spawned from ctx. Scopes are not
// inherited across execution contexts, so the goroutine starts with none;
// cancellation and other values of ctx are kept.
func Detach(ctx context.Context) context.Context {
	return WithRegistry(ctx)
}

// RegistryFrom returns the registry carried by ctx, or nil.
func RegistryFrom(ctx context.Context) *Registry {
	reg, _ := registryKey.Value(ctx)
	return reg
}

// CurrentScope returns the relation installed for model in ctx, or nil.
func CurrentScope(ctx context.Context, model string) *Relation {
	rel, _ := RegistryFrom(ctx).Get(model)
	return rel
}

// Install returns a child of ctx in which rel is its model's ambient scope.
// ctx itself is unchanged.
func Install(ctx context.Context, rel *Relation) context.Context {
	return registryKey.Set(ctx, RegistryFrom(ctx).with(rel.modelName(), rel))
}

// Scoping runs body with rel installed as its model's ambient scope. The
// scope lives only in the context handed to body; ctx keeps its previous
// scope (or none) whether body returns, fails or panics. Nested calls for
// the same model unwind in LIFO order.
func Scoping(ctx context.Context, rel *Relation, body func(ctx context.Context) error) error {
	return body(Install(ctx, rel))
}
