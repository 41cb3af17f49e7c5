package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/relq/internal/ir"
)

// ErrInvalidDirection is returned for direction tokens other than
// asc/ascending and desc/descending.
var ErrInvalidDirection = errors.New("invalid direction")

// Key compares a pair of records on a single attribute.
//
// This is a sealed interface - only Ascending and Descending implement it.
type Key interface {
	keyNode() // Marker method - seals interface to this package

	// Attribute returns the attribute the key reads.
	Attribute() string

	// Compare returns -1, 0 or +1. Missing attributes fail with
	// ir.ErrAttributeNotFound, mismatched kinds with ir.ErrIncomparable.
	Compare(a, b ir.Record) (int, error)
}

// Ascending orders records by attribute, smallest first.
type Ascending struct {
	Name string
}

func (Ascending) keyNode() {}

// Attribute implements Key.
func (k Ascending) Attribute() string { return k.Name }

// Compare implements Key.
func (k Ascending) Compare(a, b ir.Record) (int, error) {
	av, err := ir.Get(a, k.Name)
	if err != nil {
		return 0, err
	}
	bv, err := ir.Get(b, k.Name)
	if err != nil {
		return 0, err
	}
	c, err := ir.Compare(av, bv)
	if err != nil {
		return 0, fmt.Errorf("order by %q: %w", k.Name, err)
	}
	return c, nil
}

// Descending orders records by attribute, largest first.
// It swaps the arguments of Ascending rather than negating its result.
type Descending struct {
	Name string
}

func (Descending) keyNode() {}

// Attribute implements Key.
func (k Descending) Attribute() string { return k.Name }

// Compare implements Key.
func (k Descending) Compare(a, b ir.Record) (int, error) {
	return Ascending{Name: k.Name}.Compare(b, a)
}

// Asc is shorthand for Ascending{Name: name}.
func Asc(name string) Key { return Ascending{Name: name} }

// Desc is shorthand for Descending{Name: name}.
func Desc(name string) Key { return Descending{Name: name} }

// Clause is an ordered sequence of keys. The zero value is the empty clause.
type Clause []Key

// Compare tries each key in order and returns the first non-zero result.
// An empty clause reports every pair as equal.
func (c Clause) Compare(a, b ir.Record) (int, error) {
	for _, k := range c {
		r, err := k.Compare(a, b)
		if err != nil || r != 0 {
			return r, err
		}
	}
	return 0, nil
}

// IsEmpty reports whether the clause has no keys.
func (c Clause) IsEmpty() bool {
	return len(c) == 0
}

// String renders the clause as "priority DESC, id ASC".
func (c Clause) String() string {
	parts := make([]string, len(c))
	for i, k := range c {
		parts[i] = k.Attribute() + " " + strings.ToUpper(string(DirectionOf(k)))
	}
	return strings.Join(parts, ", ")
}

// Combine appends b's keys after a's. Neither input is modified.
func Combine(a, b Clause) Clause {
	out := make(Clause, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// By builds an ascending key per attribute, in argument order.
func By(attrs ...string) Clause {
	c := make(Clause, len(attrs))
	for i, a := range attrs {
		c[i] = Ascending{Name: a}
	}
	return c
}

// Sort stably sorts records in place by c. Sorting stops recording results
// after the first comparison error, which is returned; the slice order is
// then unspecified.
func Sort(records []ir.Record, c Clause) error {
	if c.IsEmpty() || len(records) < 2 {
		return nil
	}

	var sortErr error
	slices.SortStableFunc(records, func(a, b ir.Record) int {
		if sortErr != nil {
			return 0
		}
		r, err := c.Compare(a, b)
		if err != nil {
			sortErr = err
			return 0
		}
		return r
	})
	return sortErr
}
