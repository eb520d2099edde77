package query

import (
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/model"
	"github.com/foliva/docengine/pkg/internal/types"
)

// Candidate is the planner's input shape: a document's metadata plus its
// already-decoded payload, so the planner never reparses JSON per filter
// evaluation (§9 — "avoid re-parsing it per request").
type Candidate struct {
	ID        string
	OwnerID   string
	Title     string
	CreatedAt int64 // unix nanos, used only for the tie-break
	Payload   map[string]any
}

// DecodeCandidate decodes a document's stored payload once, producing the
// view the planner and projector both operate on.
func DecodeCandidate(doc *model.Document) (Candidate, error) {
	payload := map[string]any{}
	if doc.PayloadJSON != "" {
		if err := sonic.Unmarshal([]byte(doc.PayloadJSON), &payload); err != nil {
			return Candidate{}, apperrors.Wrap(apperrors.KindInternal, "decode document payload", err)
		}
	}

	return Candidate{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt.UnixNano(),
		Payload:   payload,
	}, nil
}

// Plan runs a SearchRequest against a pre-fetched candidate set — callers
// are responsible for narrowing candidates to the right collection, stage,
// and visibility scope (via repository-level SQL) before calling Plan; Plan
// itself applies the filter tree, sort, and pagination, which operate on
// the decoded JSON payload and so cannot be pushed into SQL generically
// across the supported dialects.
func Plan(req types.SearchRequest, candidates []Candidate) types.SearchResult {
	req.Normalize()

	matched := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		if req.ExactTitle != "" && !strings.EqualFold(c.Title, req.ExactTitle) {
			continue
		}

		if Evaluate(req.Filter, docView{OwnerID: c.OwnerID, Payload: c.Payload}) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		vi := docView{OwnerID: matched[i].OwnerID, Payload: matched[i].Payload}
		vj := docView{OwnerID: matched[j].OwnerID, Payload: matched[j].Payload}

		if less := lessDocs(vi, vj, req.Sort); less {
			return true
		}

		if lessDocs(vj, vi, req.Sort) {
			return false
		}

		// Tie-break: created_at asc, then id asc (§4.3.3, §9).
		if matched[i].CreatedAt != matched[j].CreatedAt {
			return matched[i].CreatedAt < matched[j].CreatedAt
		}

		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))

	start := req.Offset
	if start > len(matched) {
		start = len(matched)
	}

	end := start + req.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := matched[start:end]
	items := make([]types.SearchResultRow, 0, len(page))

	for _, c := range page {
		items = append(items, types.SearchResultRow{ID: c.ID, F: project(c, req.ExtraFields)})
	}

	return types.SearchResult{Limit: req.Limit, Offset: req.Offset, Total: total, Items: items}
}

// project builds the f map for one result row: always title, plus every
// requested extra field (author_id resolves to owner_id); unknown paths
// project as absent rather than erroring (§4.3.4).
func project(c Candidate, extraFields []string) map[string]any {
	out := map[string]any{"title": c.Title}

	for _, field := range extraFields {
		if field == types.AuthorIDField {
			out[field] = c.OwnerID
			continue
		}

		segments, err := ValidateFieldPath(field)
		if err != nil {
			continue
		}

		if v, ok := lookupPath(c.Payload, segments); ok {
			out[field] = v
		}
	}

	return out
}
