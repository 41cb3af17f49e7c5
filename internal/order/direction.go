package order

import (
	"fmt"
	"strings"
)

// Direction is a sort direction token.
type Direction string

const (
	// DirectionAsc sorts smallest first.
	DirectionAsc Direction = "asc"
	// DirectionDesc sorts largest first.
	DirectionDesc Direction = "desc"
)

// ParseDirection accepts asc, ascending, desc and descending in any case.
func ParseDirection(token string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "asc", "ascending":
		return DirectionAsc, nil
	case "desc", "descending":
		return DirectionDesc, nil
	default:
		return "", fmt.Errorf("%w %q: direction should either be asc or desc", ErrInvalidDirection, token)
	}
}

// DirectionOf reports the direction of a key.
func DirectionOf(k Key) Direction {
	if _, ok := k.(Descending); ok {
		return DirectionDesc
	}
	return DirectionAsc
}

// Pair maps one attribute to a direction token.
// A list of pairs stands in for an ordered attribute-to-direction mapping.
type Pair struct {
	Attribute string
	Direction string
}

// P is shorthand for Pair{Attribute: attr, Direction: dir}.
func P(attr, dir string) Pair {
	return Pair{Attribute: attr, Direction: dir}
}

// Parse builds one key per pair, in pair order, with the pair's direction.
func Parse(pairs ...Pair) (Clause, error) {
	c := make(Clause, 0, len(pairs))
	for _, p := range pairs {
		if p.Attribute == "" {
			return nil, fmt.Errorf("order: empty attribute name")
		}
		dir, err := ParseDirection(p.Direction)
		if err != nil {
			return nil, fmt.Errorf("order by %q: %w", p.Attribute, err)
		}
		c = append(c, NewKey(p.Attribute, dir))
	}
	return c, nil
}

// NewKey returns the key for attr in direction dir.
func NewKey(attr string, dir Direction) Key {
	if dir == DirectionDesc {
		return Descending{Name: attr}
	}
	return Ascending{Name: attr}
}

// ParseSpec parses the compact form used on the command line:
// comma separated terms, each "attr" or "attr:dir".
//
//	ParseSpec("priority:desc,id")  // priority DESC, id ASC
func ParseSpec(spec string) (Clause, error) {
	return Parse(SpecPairs(spec)...)
}

// SpecPairs splits a compact order spec into pairs without validating the
// directions. A term without a direction is ascending.
func SpecPairs(spec string) []Pair {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}

	var pairs []Pair
	for _, term := range strings.Split(spec, ",") {
		attr, dir, found := strings.Cut(strings.TrimSpace(term), ":")
		if !found {
			dir = string(DirectionAsc)
		}
		pairs = append(pairs, Pair{Attribute: strings.TrimSpace(attr), Direction: strings.TrimSpace(dir)})
	}
	return pairs
}
