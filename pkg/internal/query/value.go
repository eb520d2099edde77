package query

import (
	"strconv"
	"strings"
)

// jsonTypeRank orders JSON value kinds for native-JSON sort ('f'/'b'):
// number < bool < string (§9, resolved open question — see SPEC_FULL.md §5).
func jsonTypeRank(v any) int {
	switch v.(type) {
	case float64, int, int64:
		return 0
	case bool:
		return 1
	case string:
		return 2
	default:
		return 3 // JSON null and any other kind rank after strings
	}
}

// lookupPath walks a decoded JSON object along the given segments, returning
// (value, true) if every segment resolved to a concrete value, or
// (nil, false) if any intermediate object was missing ("absent", §4.3.3).
func lookupPath(payload map[string]any, segments []string) (any, bool) {
	var cur any = payload

	for _, seg := range segments {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		v, exists := obj[seg]
		if !exists {
			return nil, false
		}

		cur = v
	}

	return cur, true
}

// compareNative orders two JSON values by jsonTypeRank first, then by value
// within the same kind.
func compareNative(a, b any, aAbsent, bAbsent bool) int {
	switch {
	case aAbsent && bAbsent:
		return 0
	case aAbsent:
		return 1 // absent sorts after present values; a descending term reverses this
	case bAbsent:
		return -1
	}

	ra, rb := jsonTypeRank(a), jsonTypeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch av := a.(type) {
	case float64:
		bv, _ := asFloat(b)

		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv, _ := b.(bool)

		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// compareText orders two values as case-insensitive text, treating non-string
// scalars by their default string form (used for '+'/'-' sort terms).
func compareText(a, b any, aAbsent, bAbsent bool) int {
	switch {
	case aAbsent && bAbsent:
		return 0
	case aAbsent:
		return 1
	case bAbsent:
		return -1
	}

	return strings.Compare(strings.ToLower(toText(a)), strings.ToLower(toText(b)))
}

// toText renders a decoded JSON scalar as text for the '+'/'-' text sort,
// so numbers and bools still impose an ordering instead of collapsing to ""
// and falling through to the tie-break.
func toText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
