package predicate

import (
	"fmt"

	"github.com/roach88/relq/internal/ir"
)

// Predicate is a boolean test over a single record.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and lets
// Test, Invert and the SQL compiler switch exhaustively.
//
// Predicate types:
//   - Equals: attribute == literal value
//   - Custom: caller-supplied test function
//   - Not: negation of another predicate
//   - All: conjunction (empty = always true)
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Func is the signature of a caller-supplied test. It receives the record
// being filtered and must not retain or mutate it.
type Func func(rec ir.Record) bool

// Equals represents an attribute-equals-literal test.
//
// Semantics:
//
//	rec.<Attribute> == Value
//
// Evaluating Equals against a record that lacks Attribute fails with
// ir.ErrAttributeNotFound; the error is propagated, never treated as false.
type Equals struct {
	Attribute string     // Attribute name resolved on the record
	Value     ir.IRValue // Literal compared with ir.Equal
}

func (Equals) predicateNode() {}

// Custom wraps an arbitrary caller-supplied test.
// Name is optional and only used for diagnostics.
type Custom struct {
	Name string
	Fn   Func
}

func (Custom) predicateNode() {}

// Not negates another predicate. Not{Not{p}} is legal and behaves as p.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// All represents a conjunction of predicates (all must be true).
//
// Evaluation is left to right and stops at the first false (or failing)
// conjunct. An empty All is vacuously true and is the identity of Combine.
type All struct {
	Predicates []Predicate
}

func (All) predicateNode() {}

// True returns the identity predicate All{}.
func True() Predicate {
	return All{}
}

// Test evaluates p against rec.
//
// Test is pure: it has no side effects beyond those of Custom functions.
// A nil predicate is treated as always true.
func Test(p Predicate, rec ir.Record) (bool, error) {
	switch pred := p.(type) {
	case nil:
		return true, nil
	case Equals:
		v, err := ir.Get(rec, pred.Attribute)
		if err != nil {
			return false, err
		}
		return ir.Equal(v, pred.Value), nil
	case Custom:
		if pred.Fn == nil {
			return false, fmt.Errorf("custom predicate %q has no function", pred.Name)
		}
		return pred.Fn(rec), nil
	case Not:
		ok, err := Test(pred.Predicate, rec)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case All:
		for _, sub := range pred.Predicates {
			ok, err := Test(sub, rec)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// Invert returns the negation of p.
// Inverting a Not unwraps it; any other predicate is wrapped in Not.
func Invert(p Predicate) Predicate {
	if n, ok := p.(Not); ok {
		return n.Predicate
	}
	return Not{Predicate: p}
}

// Conjuncts flattens p into the list of predicates that must all hold.
// Only a top-level All is flattened; a Not is a single conjunct.
func Conjuncts(p Predicate) []Predicate {
	switch pred := p.(type) {
	case nil:
		return nil
	case All:
		return pred.Predicates
	default:
		return []Predicate{pred}
	}
}

// Combine returns the conjunction of a and b.
//
// The result is All{Conjuncts(a) ++ Conjuncts(b)}. Conjuncts are not
// deduplicated: applying the same equality twice is redundant but harmless.
// The result never shares a backing array with either input.
func Combine(a, b Predicate) Predicate {
	left, right := Conjuncts(a), Conjuncts(b)
	out := make([]Predicate, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return All{Predicates: out}
}

// IsIdentity reports whether p accepts every record without evaluating
// anything (nil or an empty All).
func IsIdentity(p Predicate) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case All:
		return len(pred.Predicates) == 0
	default:
		return false
	}
}
