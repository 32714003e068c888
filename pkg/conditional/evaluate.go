// Package conditional evaluates field visibility rules. Evaluation is pure:
// a rule and the watched value always produce the same answer.
package conditional

import (
	"strings"

	"github.com/MarJC5/slabs/internal/coerce"
	"github.com/MarJC5/slabs/pkg/schema"
)

// Supported operators.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpLess         = "<"
	OpGreaterEqual = ">="
	OpLessEqual    = "<="
	OpContains     = "contains"
	OpNotContains  = "not_contains"
	OpIn           = "in"
	OpNotIn        = "not_in"
	OpEmpty        = "empty"
	OpNotEmpty     = "not_empty"
)

// Operators lists the closed operator set.
func Operators() []string {
	return []string{
		OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual,
		OpContains, OpNotContains, OpIn, OpNotIn, OpEmpty, OpNotEmpty,
	}
}

// Known reports whether op belongs to the operator set.
func Known(op string) bool {
	for _, candidate := range Operators() {
		if candidate == op {
			return true
		}
	}
	return false
}

// Evaluate applies cond to the watched value. A nil rule is always visible,
// and so is an unknown operator.
func Evaluate(cond *schema.Conditional, watched any) bool {
	if cond == nil {
		return true
	}
	switch strings.TrimSpace(cond.Operator) {
	case OpEqual:
		return equal(watched, cond.Value)
	case OpNotEqual:
		return !equal(watched, cond.Value)
	case OpGreater:
		return compare(watched, cond.Value, func(a, b float64) bool { return a > b })
	case OpLess:
		return compare(watched, cond.Value, func(a, b float64) bool { return a < b })
	case OpGreaterEqual:
		return compare(watched, cond.Value, func(a, b float64) bool { return a >= b })
	case OpLessEqual:
		return compare(watched, cond.Value, func(a, b float64) bool { return a <= b })
	case OpContains:
		return contains(watched, cond.Value)
	case OpNotContains:
		return !contains(watched, cond.Value)
	case OpIn:
		return in(watched, cond.Value, true)
	case OpNotIn:
		return in(watched, cond.Value, false)
	case OpEmpty:
		return coerce.Empty(watched)
	case OpNotEmpty:
		return !coerce.Empty(watched)
	default:
		return true
	}
}

// equal treats nil as equal only to nil. Booleans on either side compare by
// truthiness, so any non-blank text is true, even "false". Numbers compare
// numerically, everything else as case-insensitive text.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	_, aBool := a.(bool)
	_, bBool := b.(bool)
	if aBool || bBool {
		return coerce.Truthy(a) == coerce.Truthy(b)
	}
	if coerce.IsNumeric(a) || coerce.IsNumeric(b) {
		af, aok := coerce.Number(a)
		bf, bok := coerce.Number(b)
		if aok && bok {
			return af == bf
		}
		if aok != bok {
			return false
		}
	}
	return strings.EqualFold(coerce.String(a), coerce.String(b))
}

// compare parses both sides as numbers; anything unparseable behaves like NaN.
func compare(a, b any, ok func(a, b float64) bool) bool {
	af, aok := coerce.Number(a)
	bf, bok := coerce.Number(b)
	if !aok || !bok {
		return false
	}
	return ok(af, bf)
}

func contains(watched, needle any) bool {
	if watched == nil {
		return false
	}
	if items, ok := coerce.Slice(watched); ok {
		for _, item := range items {
			if equal(item, needle) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(coerce.String(watched)), strings.ToLower(coerce.String(needle)))
}

// in requires an array comparand; anything else fails safe to false for both
// in and not_in.
func in(watched, comparand any, want bool) bool {
	items, ok := coerce.Slice(comparand)
	if !ok {
		return false
	}
	found := false
	for _, item := range items {
		if equal(watched, item) {
			found = true
			break
		}
	}
	return found == want
}
