package grants_test

import (
	"testing"

	"github.com/foliva/docengine/pkg/internal/grants"
)

func TestForDocumentNilWhenNonOAO(t *testing.T) {
	if g := grants.ForDocument(false, "doc-1", "alice"); g != nil {
		t.Fatalf("expected nil grant for non-OAO collection, got %+v", g)
	}
}

func TestForDocumentGrantsOwnerAsReaderWhenOAO(t *testing.T) {
	g := grants.ForDocument(true, "doc-1", "alice")
	if g == nil {
		t.Fatal("expected a grant row for an OAO collection")
	}

	if g.DocumentID != "doc-1" || g.UserID != "alice" || g.Relation != "reader" {
		t.Fatalf("unexpected grant row: %+v", g)
	}
}
