package relation

import "github.com/roach88/relq/internal/predicate"

// WhereChain is bound to a relation and exposes negated filters only.
type WhereChain struct {
	rel *Relation
}

// Not inverts the clause built from c on its own, then combines it into the
// bound relation. Earlier filters are not negated. Empty criteria leave the
// relation unchanged.
func (w WhereChain) Not(c Criteria) *Relation {
	out := w.rel.clone()
	if c.IsEmpty() {
		return out
	}
	out.where = predicate.Combine(w.rel.where, predicate.Invert(c.Predicate()))
	return out
}
