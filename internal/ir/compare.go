package ir

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Equal reports whether two values are equal.
//
// Strings are compared after NFC normalization so that the same text in
// different normal forms matches. Arrays and objects compare element-wise.
// Values of different kinds are never equal.
func Equal(a, b IRValue) bool {
	switch x := a.(type) {
	case IRNull:
		_, ok := b.(IRNull)
		return ok
	case nil:
		return b == nil
	case IRString:
		y, ok := b.(IRString)
		return ok && norm.NFC.String(string(x)) == norm.NFC.String(string(y))
	case IRInt:
		y, ok := b.(IRInt)
		return ok && x == y
	case IRBool:
		y, ok := b.(IRBool)
		return ok && x == y
	case IRArray:
		y, ok := b.(IRArray)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case IRObject:
		y, ok := b.(IRObject)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, found := y[k]
			if !found || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare returns -1, 0 or +1 ordering a relative to b.
//
// Total orders exist within a kind: ints numerically, strings by NFC
// normalized byte order, bools false before true, arrays lexicographically.
// IRNull sorts before every other value. Any other mix of kinds, and
// objects, fail with ErrIncomparable.
func Compare(a, b IRValue) (int, error) {
	_, aNull := a.(IRNull)
	_, bNull := b.(IRNull)
	switch {
	case aNull && bNull:
		return 0, nil
	case aNull:
		return -1, nil
	case bNull:
		return 1, nil
	}

	switch x := a.(type) {
	case IRInt:
		if y, ok := b.(IRInt); ok {
			return cmp.Compare(x, y), nil
		}
	case IRString:
		if y, ok := b.(IRString); ok {
			return strings.Compare(norm.NFC.String(string(x)), norm.NFC.String(string(y))), nil
		}
	case IRBool:
		if y, ok := b.(IRBool); ok {
			switch {
			case x == y:
				return 0, nil
			case !bool(x):
				return -1, nil
			default:
				return 1, nil
			}
		}
	case IRArray:
		if y, ok := b.(IRArray); ok {
			return compareArrays(x, y)
		}
	}

	return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable, KindOf(a), KindOf(b))
}

func compareArrays(x, y IRArray) (int, error) {
	for i := 0; i < len(x) && i < len(y); i++ {
		c, err := Compare(x[i], y[i])
		if err != nil {
			return 0, fmt.Errorf("array[%d]: %w", i, err)
		}
		if c != 0 {
			return c, nil
		}
	}
	return cmp.Compare(len(x), len(y)), nil
}

// KindOf names the kind of a value for diagnostics.
func KindOf(v IRValue) string {
	switch v.(type) {
	case IRNull:
		return "null"
	case IRString:
		return "string"
	case IRInt:
		return "int"
	case IRBool:
		return "bool"
	case IRArray:
		return "array"
	case IRObject:
		return "object"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Format renders a value for logs and explain output.
func Format(v IRValue) string {
	switch val := v.(type) {
	case IRString:
		return fmt.Sprintf("%q", string(val))
	case IRInt:
		return fmt.Sprintf("%d", int64(val))
	case IRBool:
		return fmt.Sprintf("%t", bool(val))
	case IRNull, nil:
		return "null"
	default:
		data, err := MarshalIRValue(v)
		if err != nil {
			return fmt.Sprintf("<%s>", KindOf(v))
		}
		return string(data)
	}
}
