package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrAttributeNotFound is returned when a record does not expose a
	// named attribute.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrIncomparable is returned when two values of different kinds (or
	// of a kind without a total order) are compared.
	ErrIncomparable = errors.New("values are not comparable")
)

// Record is anything exposing named-attribute read access.
//
// Records are owned by the caller. The query layer only reads attributes and
// never constructs, copies or mutates a record.
type Record interface {
	Attribute(name string) (IRValue, bool)
}

// Equaler is implemented by records that define their own identity.
// Records without it are compared by primary key.
type Equaler interface {
	Equal(other Record) bool
}

// Attribute implements Record.
func (obj IRObject) Attribute(name string) (IRValue, bool) {
	v, ok := obj[name]
	return v, ok
}

// Get reads an attribute, failing with ErrAttributeNotFound when absent.
func Get(rec Record, name string) (IRValue, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: %q (nil record)", ErrAttributeNotFound, name)
	}
	v, ok := rec.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, name)
	}
	return v, nil
}
