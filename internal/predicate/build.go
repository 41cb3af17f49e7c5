package predicate

import (
	"strings"

	"github.com/roach88/relq/internal/ir"
)

// Build constructs the predicate for one where-call.
//
// Each pair becomes an Equals in pair order; fn, when non-nil, becomes a
// trailing Custom. The pieces are joined with All. No pairs and no function
// yield the identity All{}.
func Build(pairs []ir.IRPair, fn Func) Predicate {
	preds := make([]Predicate, 0, len(pairs)+1)
	for _, p := range pairs {
		preds = append(preds, Equals{Attribute: p.Key, Value: p.Value})
	}
	if fn != nil {
		preds = append(preds, Custom{Fn: fn})
	}
	return All{Predicates: preds}
}

// BuildMap is Build over a mapping. Maps have no order of their own, so the
// entries are taken in SortedKeys order to keep evaluation deterministic.
func BuildMap(attrs ir.IRObject, fn Func) Predicate {
	return Build(attrs.Pairs(), fn)
}

// String renders p in a compact, human-readable form for logs and explain
// output, e.g. `state = "completed" AND NOT (priority = 1)`.
func String(p Predicate) string {
	var sb strings.Builder
	writePredicate(&sb, p, false)
	return sb.String()
}

func writePredicate(sb *strings.Builder, p Predicate, nested bool) {
	switch pred := p.(type) {
	case nil:
		sb.WriteString("TRUE")
	case Equals:
		sb.WriteString(pred.Attribute)
		sb.WriteString(" = ")
		sb.WriteString(ir.Format(pred.Value))
	case Custom:
		sb.WriteString("custom(")
		sb.WriteString(pred.Name)
		sb.WriteString(")")
	case Not:
		sb.WriteString("NOT (")
		writePredicate(sb, pred.Predicate, false)
		sb.WriteString(")")
	case All:
		if len(pred.Predicates) == 0 {
			sb.WriteString("TRUE")
			return
		}
		if len(pred.Predicates) == 1 {
			writePredicate(sb, pred.Predicates[0], nested)
			return
		}
		if nested {
			sb.WriteString("(")
		}
		for i, sub := range pred.Predicates {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			writePredicate(sb, sub, true)
		}
		if nested {
			sb.WriteString(")")
		}
	default:
		sb.WriteString("?")
	}
}
