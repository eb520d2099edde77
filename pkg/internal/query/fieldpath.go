// Package query evaluates a SearchRequest (§4.3) in Go over decoded
// candidate documents: it owns field-path validation, the pfilter grammar,
// the sort grammar, and the visibility predicate.
package query

import (
	"regexp"
	"strings"

	"github.com/foliva/docengine/pkg/internal/apperrors"
)

// fieldSegmentRE matches one dot-separated field path segment. Every payload
// path handed to the planner is validated against this before it is used to
// index into a decoded payload, closing the injection surface the original
// implementation left as a TODO.
var fieldSegmentRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateFieldPath splits and validates a dotted field path. It rejects
// anything that is not a plain identifier per segment — this is the sole
// gate between caller-controlled strings and the payload lookups the
// planner performs.
func ValidateFieldPath(path string) ([]string, error) {
	if path == "" {
		return nil, apperrors.New(apperrors.KindMalformed, "empty field path")
	}

	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if !fieldSegmentRE.MatchString(seg) {
			return nil, apperrors.New(apperrors.KindMalformed, "invalid field path segment: "+seg)
		}
	}

	return segments, nil
}
