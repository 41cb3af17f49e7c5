// Package relation implements lazily materialized, immutable queries over a
// record source.
//
// A Relation accumulates a predicate, an ordering clause, an optional offset
// and limit, and a list of extension bundles. Every builder method returns a
// new Relation; the receiver is never modified, so relations can be shared
// and reused freely. Nothing is evaluated until a terminal operation
// (Records, Each, Count, First, Last, Include, Find, FindBy) runs, and every
// terminal operation re-reads the source and recomputes its result:
//
//	filter (predicate) -> stable sort (order) -> drop offset -> take limit
//
// Builder methods that can fail (OrderDir, Offset, Limit, Only, Except)
// record the first failure on the relation instead of returning it. The
// failure is reported by Err and by every terminal operation.
//
// # Scopes
//
// A Registry maps model names to the relation currently installed as that
// model's ambient scope. The registry travels in a context.Context and is
// never modified in place: Scoping hands its callback a child context with
// the relation installed, so the caller's context keeps its previous value
// however the callback ends.
// Named queries registered by a Model are always evaluated under Scoping,
// which is how they compose with the relation they are called on.
package relation
