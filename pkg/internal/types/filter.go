// Package types holds the request/response shapes the document engine
// exchanges with its external HTTP surface and the internal filter/sort DSL
// (§4.3) that the query planner compiles.
package types

// Op is a filter leaf operator.
type Op string

const (
	OpEq           Op = "eq"
	OpNe           Op = "ne"
	OpLt           Op = "lt"
	OpLe           Op = "le"
	OpGt           Op = "gt"
	OpGe           Op = "ge"
	OpStartsWith   Op = "startswith"
	OpContainsText Op = "containstext"
	OpIn           Op = "in"
	OpNull         Op = "null"
	OpNotNull      Op = "notnull"
)

// Filter is one node of the filter tree: either a leaf (Field set) or a
// group (And/Or set). Exactly one of the three shapes is populated.
type Filter struct {
	// Leaf fields.
	Field    string `json:"f,omitempty"`
	Operator Op     `json:"o,omitempty"`
	Value    any    `json:"v,omitempty"`

	// Group fields.
	And []Filter `json:"and,omitempty"`
	Or  []Filter `json:"or,omitempty"`
}

// IsGroup reports whether this node is an and/or group rather than a leaf.
func (f Filter) IsGroup() bool {
	return f.And != nil || f.Or != nil
}

// IsLeaf reports whether this node is a leaf predicate.
func (f Filter) IsLeaf() bool {
	return !f.IsGroup() && f.Field != ""
}

// RequiresValue reports whether the leaf's operator needs f.Value populated.
func (o Op) RequiresValue() bool {
	return o != OpNull && o != OpNotNull
}

// SortDirection is the comparison mode a sort term uses.
type SortDirection int

const (
	// SortTextAsc ascending, case-insensitive text comparison ('+').
	SortTextAsc SortDirection = iota
	// SortTextDesc descending, case-insensitive text comparison ('-').
	SortTextDesc
	// SortNativeAsc ascending, native JSON value comparison: number < bool < string ('f').
	SortNativeAsc
	// SortNativeDesc descending, native JSON value comparison ('b').
	SortNativeDesc
)

// SortTerm is one parsed term of a sort specification.
type SortTerm struct {
	Field     string
	Direction SortDirection
}

// SearchRequest is the compiled input to the query planner (§4.3): an
// optional filter, sort list, projection list, and pagination window.
type SearchRequest struct {
	Filter      *Filter
	Sort        []SortTerm
	ExtraFields []string
	Limit       int
	Offset      int
	ExactTitle  string
}

const (
	DefaultLimit = 50
	MaxLimit     = 250
)

// Normalize clamps Limit/Offset to the defaults and bounds fixed by §6.
func (r *SearchRequest) Normalize() {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}

	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}

	if r.Offset < 0 {
		r.Offset = 0
	}
}

// AuthorIDField is the pseudo-field that matches a document's owner_id
// rather than a payload path (§4.3.2).
const AuthorIDField = "author_id"

// SearchResult is the planner's output shape (§4.3.6).
type SearchResult struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int64            `json:"total"`
	Items  []SearchResultRow `json:"items"`
}

// SearchResultRow is one projected item: always id, and the requested
// extra fields under F.
type SearchResultRow struct {
	ID string         `json:"id"`
	F  map[string]any `json:"f"`
}
