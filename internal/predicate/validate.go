package predicate

import (
	"fmt"

	"github.com/roach88/relq/internal/ir"
)

// ValidationResult contains the findings of Validate.
type ValidationResult struct {
	// Errors lists problems that make the predicate fail on evaluation
	// (empty attribute names, custom predicates without a function).
	Errors []string

	// IsPortable indicates the predicate uses only Equals, Not and All and
	// can therefore be rendered as SQL by querysql.
	IsPortable bool

	// Warnings lists non-portable features (custom functions) and
	// suspicious-but-legal constructs.
	Warnings []string
}

// Valid reports whether no errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate inspects a predicate tree without evaluating it.
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{portable: true}
	v.validatePredicate(p, "where")

	return ValidationResult{
		Errors:     v.errors,
		IsPortable: v.portable,
		Warnings:   v.warnings,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	errors   []string
	warnings []string
	portable bool
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate, path string) {
	switch pred := p.(type) {
	case nil:
		return // nil predicates are valid (no filter)
	case Equals:
		if pred.Attribute == "" {
			v.addError("%s: equality with empty attribute name", path)
		}
		if pred.Value == nil {
			v.addError("%s: attribute %q compared to a nil value", path, pred.Attribute)
		}
		if _, isNull := pred.Value.(ir.IRNull); isNull {
			v.addWarning("%s: attribute %q compared to null", path, pred.Attribute)
		}
	case Custom:
		v.portable = false
		if pred.Fn == nil {
			v.addError("%s: custom predicate %q has no function", path, pred.Name)
		}
		v.addWarning("%s: custom predicate %q cannot be rendered as SQL", path, pred.Name)
	case Not:
		if inner, ok := pred.Predicate.(Not); ok {
			// Legal, and Test handles it, but usually a sign of a double invert.
			v.addWarning("%s: double negation", path)
			v.validatePredicate(inner.Predicate, path+".not.not")
			return
		}
		v.validatePredicate(pred.Predicate, path+".not")
	case All:
		for i, sub := range pred.Predicates {
			v.validatePredicate(sub, fmt.Sprintf("%s[%d]", path, i))
		}
	default:
		v.portable = false
		v.addError("%s: unknown predicate type %T", path, p)
	}
}
