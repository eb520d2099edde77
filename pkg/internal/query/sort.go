package query

import (
	"strings"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/types"
)

// ParseSort parses the comma-separated sort grammar (§4.3.3): each term is
// <path><suffix> where suffix is one of +, -, f, b.
func ParseSort(raw string) ([]types.SortTerm, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	terms := make([]types.SortTerm, 0)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if len(part) < 2 {
			return nil, apperrors.New(apperrors.KindMalformed, "sort term too short: "+part)
		}

		suffix := part[len(part)-1]
		field := part[:len(part)-1]

		if _, err := ValidateFieldPath(field); err != nil && field != types.AuthorIDField {
			return nil, err
		}

		var dir types.SortDirection

		switch suffix {
		case '+':
			dir = types.SortTextAsc
		case '-':
			dir = types.SortTextDesc
		case 'f':
			dir = types.SortNativeAsc
		case 'b':
			dir = types.SortNativeDesc
		default:
			return nil, apperrors.New(apperrors.KindMalformed, "unknown sort suffix: "+string(suffix))
		}

		terms = append(terms, types.SortTerm{Field: field, Direction: dir})
	}

	return terms, nil
}

// lessDocs reports whether doc a sorts before doc b given the compiled sort
// terms. A descending term reverses the whole comparison, absent values
// included. It returns false when every term ties; the caller then applies
// the created_at/id tie-break (§4.3.3, §9).
func lessDocs(a, b docView, terms []types.SortTerm) bool {
	for _, t := range terms {
		av, aok := a.resolve(t.Field)
		bv, bok := b.resolve(t.Field)

		var cmp int

		switch t.Direction {
		case types.SortTextAsc, types.SortTextDesc:
			cmp = compareText(av, bv, !aok, !bok)
		default:
			cmp = compareNative(av, bv, !aok, !bok)
		}

		if t.Direction == types.SortTextDesc || t.Direction == types.SortNativeDesc {
			cmp = -cmp
		}

		if cmp != 0 {
			return cmp < 0
		}
	}

	return false // caller applies the created_at/id tie-break
}
