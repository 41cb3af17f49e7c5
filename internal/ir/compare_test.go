package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
		want bool
	}{
		{"same int", IRInt(1), IRInt(1), true},
		{"different int", IRInt(1), IRInt(2), false},
		{"int vs string", IRInt(1), IRString("1"), false},
		{"strings", IRString("a"), IRString("a"), true},
		{"nfc vs nfd", IRString("caf\u00e9"), IRString("cafe\u0301"), true},
		{"bools", IRBool(true), IRBool(false), false},
		{"nulls", IRNull{}, IRNull{}, true},
		{"null vs string", IRNull{}, IRString(""), false},
		{"arrays", IRArray{IRInt(1), IRString("a")}, IRArray{IRInt(1), IRString("a")}, true},
		{"array length", IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(1)}, false},
		{"objects", IRObject{"a": IRInt(1)}, IRObject{"a": IRInt(1)}, true},
		{"object values", IRObject{"a": IRInt(1)}, IRObject{"a": IRInt(2)}, false},
		{"object keys", IRObject{"a": IRInt(1)}, IRObject{"b": IRInt(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a), "Equal must be symmetric")
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
		want int
	}{
		{"int less", IRInt(1), IRInt(2), -1},
		{"int equal", IRInt(2), IRInt(2), 0},
		{"int greater", IRInt(3), IRInt(2), 1},
		{"string less", IRString("apple"), IRString("banana"), -1},
		{"string nfc equal", IRString("caf\u00e9"), IRString("cafe\u0301"), 0},
		{"bool", IRBool(false), IRBool(true), -1},
		{"null first", IRNull{}, IRInt(-100), -1},
		{"null last arg", IRString("a"), IRNull{}, 1},
		{"null null", IRNull{}, IRNull{}, 0},
		{"array lexicographic", IRArray{IRInt(1), IRInt(2)}, IRArray{IRInt(1), IRInt(3)}, -1},
		{"array prefix", IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(0)}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareIncomparable(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
	}{
		{"int vs string", IRInt(1), IRString("1")},
		{"objects", IRObject{}, IRObject{}},
		{"array element kinds", IRArray{IRInt(1)}, IRArray{IRString("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compare(tt.a, tt.b)
			assert.ErrorIs(t, err, ErrIncomparable)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, `"draft"`, Format(IRString("draft")))
	assert.Equal(t, `3`, Format(IRInt(3)))
	assert.Equal(t, `false`, Format(IRBool(false)))
	assert.Equal(t, `null`, Format(IRNull{}))
	assert.Equal(t, `[1,"a"]`, Format(IRArray{IRInt(1), IRString("a")}))
}
