package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/relation"
)

// Field is one attribute/value entry of a mapping.
type Field struct {
	Key   string
	Value any
}

// Fields is a mapping that remembers its key order.
type Fields []Field

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var v any
		if err := val.Decode(&v); err != nil {
			return fmt.Errorf("line %d: field %q: %w", val.Line, key.Value, err)
		}
		out = append(out, Field{Key: key.Value, Value: v})
	}
	*f = out
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	var out Fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: v})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*f = out
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// Criteria converts literal fields to equality criteria. A "$param"
// value is an error here since nothing is bound.
func (f Fields) Criteria() (relation.Criteria, error) {
	pairs, err := f.resolve(nil)
	if err != nil {
		return relation.Criteria{}, err
	}
	return relation.Eq(pairs...), nil
}

// resolve converts the fields to attribute pairs, substituting "$param"
// strings with bound arguments.
func (f Fields) resolve(bound map[string]ir.IRValue) ([]ir.IRPair, error) {
	pairs := make([]ir.IRPair, 0, len(f))
	for _, field := range f {
		if s, ok := field.Value.(string); ok && len(s) > 1 && s[0] == '$' {
			v, found := bound[s[1:]]
			if !found {
				return nil, fmt.Errorf("field %q: unknown parameter %q", field.Key, s)
			}
			pairs = append(pairs, ir.O(field.Key, v))
			continue
		}
		v, err := ir.FromGo(field.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Key, err)
		}
		pairs = append(pairs, ir.O(field.Key, v))
	}
	return pairs, nil
}

// OrderSpec is an ordering clause as written in a dataset. It accepts a
// mapping of attribute to direction, a list of "attr[:dir]" terms, or a
// single comma separated string.
type OrderSpec []order.Pair

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OrderSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*o = order.SpecPairs(node.Value)
		return nil
	case yaml.MappingNode:
		var fields Fields
		if err := fields.UnmarshalYAML(node); err != nil {
			return err
		}
		return o.fromFields(fields)
	case yaml.SequenceNode:
		var terms []string
		if err := node.Decode(&terms); err != nil {
			return fmt.Errorf("line %d: order terms must be strings: %w", node.Line, err)
		}
		return o.fromTerms(terms)
	default:
		return fmt.Errorf("line %d: unsupported order clause", node.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OrderSpec) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty order clause")
	}
	switch trimmed[0] {
	case '"':
		var spec string
		if err := json.Unmarshal(trimmed, &spec); err != nil {
			return err
		}
		*o = order.SpecPairs(spec)
		return nil
	case '[':
		var terms []string
		if err := json.Unmarshal(trimmed, &terms); err != nil {
			return fmt.Errorf("order terms must be strings: %w", err)
		}
		return o.fromTerms(terms)
	default:
		var fields Fields
		if err := fields.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		return o.fromFields(fields)
	}
}

func (o *OrderSpec) fromFields(fields Fields) error {
	pairs := make(OrderSpec, 0, len(fields))
	for _, f := range fields {
		dir, ok := f.Value.(string)
		if !ok {
			return fmt.Errorf("order by %q: direction must be a string, got %T", f.Key, f.Value)
		}
		pairs = append(pairs, order.P(f.Key, dir))
	}
	*o = pairs
	return nil
}

func (o *OrderSpec) fromTerms(terms []string) error {
	pairs := make(OrderSpec, 0, len(terms))
	for _, term := range terms {
		pairs = append(pairs, order.SpecPairs(term)...)
	}
	*o = pairs
	return nil
}

// Clause validates the directions and builds the ordering clause.
func (o OrderSpec) Clause() (order.Clause, error) {
	return order.Parse(o...)
}
