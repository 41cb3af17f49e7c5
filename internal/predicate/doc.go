// Package predicate provides the predicate algebra relations filter with.
//
// A Predicate is a composable boolean test over one record:
//
//	Equals{Attribute, Value}   rec.Attribute == Value
//	Custom{Name, Fn}           Fn(rec)
//	Not{Predicate}             !Predicate
//	All{Predicates}            every Predicate (empty = true)
//
// # Composition
//
// Combine concatenates conjuncts: Combine(a, b) = All{Conjuncts(a) ++
// Conjuncts(b)}. It never deduplicates and never mutates its inputs, so a
// relation can share its predicate with every relation derived from it.
//
// Invert eliminates double negation on the way out: Invert(Not{p}) = p.
// A relation's where-not call inverts the whole clause built by that call,
// giving "exclude records matching all of these" semantics.
//
// # Sealed Interface
//
// Predicate is sealed with a marker method. Test, Invert, Validate, String
// and the querysql compiler all switch exhaustively over the four variants.
//
// # Errors
//
// Test propagates ir.ErrAttributeNotFound when an Equals names an attribute
// the record does not expose. A missing attribute is never read as "false".
package predicate
