package relation

import (
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/predicate"
)

// Criteria is the argument of Where, WhereNot and FindBy: attribute
// equalities, in order, plus an optional test function.
type Criteria struct {
	Eq   []ir.IRPair
	Name string // diagnostic name of Func
	Func predicate.Func
}

// Eq builds criteria from attribute/value pairs.
func Eq(pairs ...ir.IRPair) Criteria {
	return Criteria{Eq: pairs}
}

// EqMap builds criteria from a mapping, taking its keys in sorted order.
func EqMap(attrs ir.IRObject) Criteria {
	return Criteria{Eq: attrs.Pairs()}
}

// Func builds criteria from a test function.
func Func(name string, fn predicate.Func) Criteria {
	return Criteria{Name: name, Func: fn}
}

// IsEmpty reports whether the criteria carry neither pairs nor a function.
func (c Criteria) IsEmpty() bool {
	return len(c.Eq) == 0 && c.Func == nil
}

// Predicate builds the clause for these criteria alone.
func (c Criteria) Predicate() predicate.Predicate {
	preds := predicate.Conjuncts(predicate.Build(c.Eq, nil))
	if c.Func != nil {
		preds = append(preds, predicate.Custom{Name: c.Name, Fn: c.Func})
	}
	return predicate.All{Predicates: preds}
}
