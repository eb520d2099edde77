package query_test

import (
	"testing"

	"github.com/foliva/docengine/pkg/internal/query"
	"github.com/foliva/docengine/pkg/internal/types"
)

func geo(edges any) map[string]any {
	if edges == nil {
		return map[string]any{}
	}

	return map[string]any{"geo": map[string]any{"edges": edges}}
}

func TestSortByNestedPathMissingLast(t *testing.T) {
	candidates := []query.Candidate{
		{ID: "1", Title: "Triangle", Payload: geo(3.0)},
		{ID: "2", Title: "Hexagon", Payload: geo(6.0)},
		{ID: "3", Title: "Circle", Payload: geo(nil)},
		{ID: "4", Title: "Rectangle", Payload: geo(nil)},
	}

	terms, err := query.ParseSort("geo.edges+")
	if err != nil {
		t.Fatalf("parse sort: %v", err)
	}

	result := query.Plan(types.SearchRequest{Sort: terms, ExtraFields: []string{"geo"}}, candidates)

	got := titlesOf(result)
	want := []string{"Triangle", "Hexagon", "Circle", "Rectangle"}

	assertOrder(t, got, want)
}

func TestSortByNestedPathDescending(t *testing.T) {
	candidates := []query.Candidate{
		{ID: "1", Title: "Triangle", Payload: geo(3.0)},
		{ID: "2", Title: "Hexagon", Payload: geo(6.0)},
		{ID: "3", Title: "Circle", Payload: geo(nil)},
		{ID: "4", Title: "Rectangle", Payload: geo(nil)},
	}

	terms, err := query.ParseSort("geo.edges-")
	if err != nil {
		t.Fatalf("parse sort: %v", err)
	}

	result := query.Plan(types.SearchRequest{Sort: terms, ExtraFields: []string{"geo"}}, candidates)

	got := titlesOf(result)
	want := []string{"Circle", "Rectangle", "Hexagon", "Triangle"}

	assertOrder(t, got, want)
}

func TestAuthorFilterCounts(t *testing.T) {
	candidates := make([]query.Candidate, 0, 6)
	for i := 0; i < 5; i++ {
		candidates = append(candidates, query.Candidate{ID: "e1-" + string(rune('a'+i)), OwnerID: "e1", Payload: map[string]any{}})
	}

	candidates = append(candidates, query.Candidate{ID: "e2-a", OwnerID: "e2", Payload: map[string]any{}})

	filter := &types.Filter{Field: types.AuthorIDField, Operator: types.OpEq, Value: "e1"}
	result := query.Plan(types.SearchRequest{Filter: filter}, candidates)

	if result.Total != 5 {
		t.Fatalf("expected total 5 for e1, got %d", result.Total)
	}

	filter.Value = "e2"
	result = query.Plan(types.SearchRequest{Filter: filter}, candidates)

	if result.Total != 1 {
		t.Fatalf("expected total 1 for e2, got %d", result.Total)
	}
}

func TestEqIsTypeStrict(t *testing.T) {
	candidates := []query.Candidate{
		{ID: "1", Payload: map[string]any{"price": 3.0}},
		{ID: "2", Payload: map[string]any{"price": "3"}},
	}

	filter := &types.Filter{Field: "price", Operator: types.OpEq, Value: 3.0}
	result := query.Plan(types.SearchRequest{Filter: filter}, candidates)

	if result.Total != 1 {
		t.Fatalf("expected eq to be type-strict, got total %d", result.Total)
	}
}

func TestContainsTextCaseInsensitive(t *testing.T) {
	candidates := []query.Candidate{
		{ID: "1", Payload: map[string]any{"title": "Rectangle"}},
	}

	filter := &types.Filter{Field: "title", Operator: types.OpContainsText, Value: "RECT"}
	result := query.Plan(types.SearchRequest{Filter: filter}, candidates)

	if result.Total != 1 {
		t.Fatalf("expected case-insensitive containstext match")
	}
}

func TestNumericCompareExcludesStringTypedField(t *testing.T) {
	candidates := []query.Candidate{
		{ID: "1", Payload: map[string]any{"price": "expensive"}},
	}

	filter := &types.Filter{Field: "price", Operator: types.OpGt, Value: 10.0}
	result := query.Plan(types.SearchRequest{Filter: filter}, candidates)

	if result.Total != 0 {
		t.Fatalf("expected numeric compare against string field to exclude the row")
	}
}

func TestParsePFilterEquivalence(t *testing.T) {
	f, err := query.ParsePFilter("author_id=e1-uuid")
	if err != nil {
		t.Fatalf("parse pfilter: %v", err)
	}

	if f.Field != types.AuthorIDField || f.Operator != types.OpEq || f.Value != "e1-uuid" {
		t.Fatalf("unexpected pfilter parse result: %+v", f)
	}
}

func titlesOf(r types.SearchResult) []string {
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		t, _ := item.F["title"].(string)
		out = append(out, t)
	}

	return out
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}
