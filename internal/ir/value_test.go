package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysUTF16Order(t *testing.T) {
	// U+10000 encodes as surrogates 0xD800 0xDC00, which sort before U+E000
	// in UTF-16 but after it in UTF-8.
	obj := IRObject{
		"\U00010000": IRInt(1),
		"\uE000":     IRInt(2),
	}

	assert.Equal(t, []string{"\U00010000", "\uE000"}, obj.SortedKeys())
}

func TestIRObjectPairs(t *testing.T) {
	obj := IRObject{"state": IRString("draft"), "id": IRInt(1)}

	pairs := obj.Pairs()

	require.Len(t, pairs, 2)
	assert.Equal(t, O("id", IRInt(1)), pairs[0])
	assert.Equal(t, O("state", IRString("draft")), pairs[1])
}

func TestNewIRObjectFromPairs(t *testing.T) {
	obj := NewIRObjectFromPairs(O("id", IRInt(1)), O("id", IRInt(2)), O("state", IRString("x")))

	assert.Equal(t, IRObject{"id": IRInt(2), "state": IRString("x")}, obj)
}

func TestMarshalIRValueRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value IRValue
		json  string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"int", IRInt(-7), `-7`},
		{"bool", IRBool(true), `true`},
		{"null", IRNull{}, `null`},
		{"array", IRArray{IRInt(1), IRString("a")}, `[1,"a"]`},
		{"object", IRObject{"b": IRInt(2), "a": IRInt(1)}, `{"a":1,"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalIRValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(data))

			back, err := UnmarshalIRValue(data)
			require.NoError(t, err)
			assert.True(t, Equal(tt.value, back), "round trip changed %s", tt.json)
		})
	}
}

func TestUnmarshalRejectsFloats(t *testing.T) {
	for _, input := range []string{`1.5`, `1e3`, `{"a":2.0}`, `[0.1]`} {
		_, err := UnmarshalIRValue([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestIRObjectUnmarshalJSON(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"id":3,"state":"completed","tags":["a"],"owner":null}`), &obj)
	require.NoError(t, err)

	assert.Equal(t, IRInt(3), obj["id"])
	assert.Equal(t, IRString("completed"), obj["state"])
	assert.Equal(t, IRArray{IRString("a")}, obj["tags"])
	assert.Equal(t, IRNull{}, obj["owner"])
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    IRValue
		wantErr bool
	}{
		{"nil", nil, IRNull{}, false},
		{"string", "x", IRString("x"), false},
		{"int", 3, IRInt(3), false},
		{"int64", int64(4), IRInt(4), false},
		{"integral float", float64(5), IRInt(5), false},
		{"fractional float", 5.5, nil, true},
		{"float at int64 min", float64(math.MinInt64), IRInt(math.MinInt64), false},
		{"float above int64 range", 1e20, nil, true},
		{"float at 2^63", math.Ldexp(1, 63), nil, true},
		{"float below int64 range", -1e19, nil, true},
		{"large integral float", 1e15, IRInt(1e15), false},
		{"bytes", []byte("raw"), IRString("raw"), false},
		{"json number", json.Number("12"), IRInt(12), false},
		{"json float", json.Number("1.2"), nil, true},
		{"slice", []any{1, "a"}, IRArray{IRInt(1), IRString("a")}, false},
		{"map", map[string]any{"k": true}, IRObject{"k": IRBool(true)}, false},
		{"unsupported", struct{}{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToGo(t *testing.T) {
	v := IRObject{
		"id":   IRInt(1),
		"tags": IRArray{IRString("a"), IRBool(false)},
		"nil":  IRNull{},
	}

	got := ToGo(v)

	assert.Equal(t, map[string]any{
		"id":   int64(1),
		"tags": []any{"a", false},
		"nil":  nil,
	}, got)
}

func TestObjectFromGoReportsField(t *testing.T) {
	_, err := ObjectFromGo(map[string]any{"ratio": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "ratio"`)
}
