package query

import (
	"strconv"
	"strings"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/types"
)

// ParsePFilter parses the compact URL-style filter dialect (§4.3.2):
// field=value clauses joined by '&', ANDed together.
func ParsePFilter(raw string) (*types.Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	clauses := strings.Split(raw, "&")

	leaves := make([]types.Filter, 0, len(clauses))

	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		leaf, err := parsePFilterClause(clause)
		if err != nil {
			return nil, err
		}

		leaves = append(leaves, leaf)
	}

	if len(leaves) == 0 {
		return nil, nil
	}

	if len(leaves) == 1 {
		return &leaves[0], nil
	}

	return &types.Filter{And: leaves}, nil
}

func parsePFilterClause(clause string) (types.Filter, error) {
	eq := strings.IndexByte(clause, '=')
	if eq < 0 {
		return types.Filter{}, apperrors.New(apperrors.KindMalformed, "pfilter clause missing '=': "+clause)
	}

	field := strings.TrimSpace(clause[:eq])
	rhs := strings.TrimSpace(clause[eq+1:])

	if _, err := ValidateFieldPath(field); err != nil && field != types.AuthorIDField {
		return types.Filter{}, err
	}

	switch {
	case strings.HasPrefix(rhs, "~'") && strings.HasSuffix(rhs, "'"):
		return types.Filter{Field: field, Operator: types.OpContainsText, Value: unquote(rhs[1:])}, nil
	case strings.HasPrefix(rhs, "@'") && strings.HasSuffix(rhs, "'"):
		return types.Filter{Field: field, Operator: types.OpStartsWith, Value: unquote(rhs[1:])}, nil
	case strings.HasPrefix(rhs, "[") && strings.HasSuffix(rhs, "]"):
		items, err := parsePFilterList(rhs[1 : len(rhs)-1])
		if err != nil {
			return types.Filter{}, err
		}

		return types.Filter{Field: field, Operator: types.OpIn, Value: items}, nil
	case strings.HasPrefix(rhs, "'") && strings.HasSuffix(rhs, "'"):
		return types.Filter{Field: field, Operator: types.OpEq, Value: unquote(rhs)}, nil
	default:
		if n, err := strconv.ParseFloat(rhs, 64); err == nil {
			return types.Filter{Field: field, Operator: types.OpEq, Value: n}, nil
		}

		// Bare, unquoted RHS that isn't a number — e.g. a UUID (scenario 6) —
		// is still taken as a string literal rather than rejected.
		return types.Filter{Field: field, Operator: types.OpEq, Value: rhs}, nil
	}
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")

	return s
}

func parsePFilterList(inner string) ([]any, error) {
	if strings.TrimSpace(inner) == "" {
		return []any{}, nil
	}

	parts := strings.Split(inner, ",")
	items := make([]any, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		switch {
		case strings.HasPrefix(p, "'") && strings.HasSuffix(p, "'"):
			items = append(items, unquote(p))
		default:
			n, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, apperrors.New(apperrors.KindMalformed, "pfilter list item is not a number or quoted literal: "+p)
			}

			items = append(items, n)
		}
	}

	return items, nil
}
