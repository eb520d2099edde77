package query

import (
	"strings"

	"github.com/foliva/docengine/pkg/internal/types"
)

// docView is the minimal view of a document the evaluator needs: its
// decoded payload plus the metadata fields the author_id pseudo-field and
// tie-break sort reach into.
type docView struct {
	OwnerID string
	Payload map[string]any
}

func (d docView) resolve(field string) (any, bool) {
	if field == types.AuthorIDField {
		return d.OwnerID, true
	}

	segments, err := ValidateFieldPath(field)
	if err != nil {
		return nil, false
	}

	return lookupPath(d.Payload, segments)
}

// Evaluate reports whether doc matches the filter tree. A nil filter always
// matches.
func Evaluate(f *types.Filter, doc docView) bool {
	if f == nil {
		return true
	}

	return evalNode(*f, doc)
}

func evalNode(f types.Filter, doc docView) bool {
	switch {
	case len(f.And) > 0:
		for _, child := range f.And {
			if !evalNode(child, doc) {
				return false
			}
		}

		return true
	case len(f.Or) > 0:
		for _, child := range f.Or {
			if evalNode(child, doc) {
				return true
			}
		}

		return false
	default:
		return evalLeaf(f, doc)
	}
}

func evalLeaf(f types.Filter, doc docView) bool {
	val, present := doc.resolve(f.Field)

	switch f.Operator {
	case types.OpNull:
		return !present
	case types.OpNotNull:
		return present
	}

	if !present {
		// Absent values compare false under every value operator (§4.3.3).
		return false
	}

	switch f.Operator {
	case types.OpEq:
		return valuesEqual(val, f.Value)
	case types.OpNe:
		return !valuesEqual(val, f.Value)
	case types.OpLt, types.OpLe, types.OpGt, types.OpGe:
		return evalNumericCompare(f.Operator, val, f.Value)
	case types.OpStartsWith:
		s, ok := val.(string)
		needle, ok2 := f.Value.(string)

		return ok && ok2 && strings.HasPrefix(strings.ToLower(s), strings.ToLower(needle))
	case types.OpContainsText:
		s, ok := val.(string)
		needle, ok2 := f.Value.(string)

		return ok && ok2 && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case types.OpIn:
		items, ok := f.Value.([]any)
		if !ok {
			return false
		}

		for _, item := range items {
			if valuesEqual(val, item) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// valuesEqual implements eq/ne's type-strict comparison: "3" != 3.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := asFloat(b)
		return ok && av == bv
	default:
		return false
	}
}

// evalNumericCompare requires the field's JSON type to be numeric; a
// string-typed field under a numeric operator excludes the row rather than
// erroring (§4.3.1).
func evalNumericCompare(op types.Op, val, target any) bool {
	av, ok1 := asFloat(val)
	bv, ok2 := asFloat(target)

	if !ok1 || !ok2 {
		return false
	}

	switch op {
	case types.OpLt:
		return av < bv
	case types.OpLe:
		return av <= bv
	case types.OpGt:
		return av > bv
	case types.OpGe:
		return av >= bv
	default:
		return false
	}
}
