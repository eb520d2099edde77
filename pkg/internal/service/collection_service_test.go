package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/model"
	"github.com/foliva/docengine/pkg/internal/service"
	"github.com/foliva/docengine/pkg/internal/types"
)

func principal(id string, roles ...string) authz.Principal {
	return authz.Principal{ID: id, Roles: authz.NewRoles(roles)}
}

func admin(id string) authz.Principal {
	return principal(id, "A_FOLIVAFY_COLLECTION_EDITOR")
}

func noDeletion() configs.DeletionConfig { return configs.DeletionConfig{} }

func newService(t *testing.T) *service.CollectionService {
	t.Helper()

	repo, _ := newTestRepo(t)

	return service.New(repo, noDeletion)
}

// newServiceWithDB is newService plus the underlying *gorm.DB, for tests
// that need to mutate a row the facade itself never exposes a way to set.
func newServiceWithDB(t *testing.T) (*service.CollectionService, *gorm.DB) {
	t.Helper()

	repo, gdb := newTestRepo(t)

	return service.New(repo, noDeletion), gdb
}

func mustCreateCollection(t *testing.T, svc *service.CollectionService, name string, oao bool) {
	t.Helper()

	if err := svc.CreateCollection(context.Background(), admin("root"), name, "Title", oao); err != nil {
		t.Fatalf("create collection %q: %v", name, err)
	}
}

func TestCreateCollectionRequiresAdmin(t *testing.T) {
	svc := newService(t)

	err := svc.CreateCollection(context.Background(), principal("alice"), "shapes", "Shapes", false)
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("expected KindUnauthorized, got %v", err)
	}
}

func TestCreateCollectionRejectsMalformedName(t *testing.T) {
	svc := newService(t)

	err := svc.CreateCollection(context.Background(), admin("root"), "Shapes!", "Shapes", false)
	if apperrors.KindOf(err) != apperrors.KindMalformed {
		t.Fatalf("expected KindMalformed for an invalid name, got %v", err)
	}
}

func TestCreateCollectionDuplicateName(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "shapes", false)

	err := svc.CreateCollection(context.Background(), admin("root"), "shapes", "Shapes again", false)
	if apperrors.KindOf(err) != apperrors.KindDuplicateCollection {
		t.Fatalf("expected KindDuplicateCollection, got %v", err)
	}
}

func TestInsertDocumentRequiresEditorRole(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "shapes", false)

	err := svc.InsertDocument(context.Background(), principal("alice", "C_SHAPES_READER"), "shapes", uuid.NewString(), map[string]any{"title": "Square"})
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("expected KindUnauthorized for a reader without editor, got %v", err)
	}
}

func TestInsertDocumentRejectsNonUUIDID(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "shapes", false)

	err := svc.InsertDocument(context.Background(), principal("alice", "C_SHAPES_EDITOR"), "shapes", "not-a-uuid", map[string]any{"title": "Square"})
	if apperrors.KindOf(err) != apperrors.KindMalformed {
		t.Fatalf("expected KindMalformed for a non-uuid id, got %v", err)
	}
}

func TestInsertDocumentThenReadRoundTrips(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "shapes", false)

	id := uuid.NewString()
	caller := principal("alice", "C_SHAPES_EDITOR", "C_SHAPES_READER")

	if err := svc.InsertDocument(context.Background(), caller, "shapes", id, map[string]any{"title": "Square", "sides": 4.0}); err != nil {
		t.Fatalf("insert document: %v", err)
	}

	doc, payload, trail, err := svc.ReadDocument(context.Background(), caller, "shapes", id)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	if doc.OwnerID != "alice" {
		t.Fatalf("unexpected owner: %q", doc.OwnerID)
	}

	if payload["sides"] != 4.0 {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	if len(trail) != 1 || trail[0].Category != model.CategoryAudit {
		t.Fatalf("unexpected trail: %+v", trail)
	}
}

func TestInsertDocumentDuplicateIDAcrossCollectionsFails(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "shapes", false)
	mustCreateCollection(t, svc, "colors", false)

	id := uuid.NewString()
	caller := principal("alice", "C_SHAPES_EDITOR", "C_COLORS_EDITOR")

	if err := svc.InsertDocument(context.Background(), caller, "shapes", id, map[string]any{}); err != nil {
		t.Fatalf("insert into shapes: %v", err)
	}

	err := svc.InsertDocument(context.Background(), caller, "colors", id, map[string]any{})
	if apperrors.KindOf(err) != apperrors.KindDuplicateDocument {
		t.Fatalf("expected KindDuplicateDocument for a cross-collection id collision, got %v", err)
	}
}

// TestReplaceDocumentOAORequiresOwnershipNotJustAllReader is the regression
// test for the asymmetry between replace and PostEvent under OAO: an
// all-reader may see every document but may not replace one it does not
// own (§4.4's replace-document row has no all-reader bypass, unlike read
// visibility or PostEvent).
func TestReplaceDocumentOAORequiresOwnershipNotJustAllReader(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "folivafy-mail", true)

	owner := principal("alice", "C_FOLIVAFY-MAIL_EDITOR")
	id := uuid.NewString()

	if err := svc.InsertDocument(context.Background(), owner, "folivafy-mail", id, map[string]any{"to": "bob@example.com"}); err != nil {
		t.Fatalf("insert document: %v", err)
	}

	allReader := principal("system:jobs", "C_FOLIVAFY-MAIL_EDITOR", "C_FOLIVAFY-MAIL_ALLREADER")

	err := svc.ReplaceDocument(context.Background(), allReader, "folivafy-mail", id, map[string]any{"to": "bob@example.com", "status": "sent"})
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected an all-reader's replace of a document it does not own to be KindNotFound, got %v", err)
	}

	// The owner, unlike the all-reader, may replace its own document.
	if err := svc.ReplaceDocument(context.Background(), owner, "folivafy-mail", id, map[string]any{"to": "bob@example.com", "status": "sent"}); err != nil {
		t.Fatalf("owner replace: %v", err)
	}
}

// TestPostEventOAOAllReaderBypassesOwnership is the positive counterpart:
// PostEvent's explicit CanReadAll bypass lets the same all-reader record an
// event against a document it does not own, which is why the mail worker
// uses PostEvent rather than ReplaceDocument.
func TestPostEventOAOAllReaderBypassesOwnership(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "folivafy-mail", true)

	owner := principal("alice", "C_FOLIVAFY-MAIL_EDITOR")
	id := uuid.NewString()

	if err := svc.InsertDocument(context.Background(), owner, "folivafy-mail", id, map[string]any{"to": "bob@example.com"}); err != nil {
		t.Fatalf("insert document: %v", err)
	}

	allReader := principal("system:jobs", "C_FOLIVAFY-MAIL_EDITOR", "C_FOLIVAFY-MAIL_ALLREADER")

	if err := svc.PostEvent(context.Background(), allReader, id, model.CategoryMailReceipt, map[string]any{"status": "sent"}); err != nil {
		t.Fatalf("expected an all-reader's PostEvent to bypass OAO ownership, got %v", err)
	}
}

func TestReadDocumentOAOHidesOtherOwnersDocuments(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "notes", true)

	alice := principal("alice", "C_NOTES_EDITOR", "C_NOTES_READER")
	bob := principal("bob", "C_NOTES_READER")

	id := uuid.NewString()
	if err := svc.InsertDocument(context.Background(), alice, "notes", id, map[string]any{}); err != nil {
		t.Fatalf("insert document: %v", err)
	}

	_, _, _, err := svc.ReadDocument(context.Background(), bob, "notes", id)
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected KindNotFound, not unauthorized, for a non-owner reading an OAO document, got %v", err)
	}
}

func TestSearchReturnsOnlyOwnDocumentsUnderOAOForPlainReader(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "notes", true)

	alice := principal("alice", "C_NOTES_EDITOR", "C_NOTES_READER")
	bob := principal("bob", "C_NOTES_EDITOR", "C_NOTES_READER")

	if err := svc.InsertDocument(context.Background(), alice, "notes", uuid.NewString(), map[string]any{"title": "Alice's note"}); err != nil {
		t.Fatalf("insert alice's document: %v", err)
	}

	if err := svc.InsertDocument(context.Background(), bob, "notes", uuid.NewString(), map[string]any{"title": "Bob's note"}); err != nil {
		t.Fatalf("insert bob's document: %v", err)
	}

	result, err := svc.Search(context.Background(), alice, "notes", types.SearchRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if result.Total != 1 {
		t.Fatalf("expected alice to see exactly her own document, got %d", result.Total)
	}
}

func TestPostEventDeleteRequiresDeletionEnabled(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "notes", false)

	caller := principal("alice", "C_NOTES_EDITOR", "C_NOTES_READER", "C_NOTES_REMOVER")
	id := uuid.NewString()

	if err := svc.InsertDocument(context.Background(), caller, "notes", id, map[string]any{}); err != nil {
		t.Fatalf("insert document: %v", err)
	}

	err := svc.PostEvent(context.Background(), caller, id, model.CategoryDelete, nil)
	if apperrors.KindOf(err) != apperrors.KindMalformed {
		t.Fatalf("expected KindMalformed when deletion is not configured for the collection, got %v", err)
	}
}

func TestPostEventRejectsLockedCollection(t *testing.T) {
	svc, gdb := newServiceWithDB(t)
	mustCreateCollection(t, svc, "notes", false)

	caller := principal("alice", "C_NOTES_EDITOR", "C_NOTES_READER", "C_NOTES_REMOVER")
	id := uuid.NewString()

	if err := svc.InsertDocument(context.Background(), caller, "notes", id, map[string]any{}); err != nil {
		t.Fatalf("insert document: %v", err)
	}

	if err := gdb.Model(&model.Collection{}).Where("name = ?", "notes").Update("locked", true).Error; err != nil {
		t.Fatalf("lock collection: %v", err)
	}

	err := svc.PostEvent(context.Background(), caller, id, 99, map[string]any{"k": "v"})
	if apperrors.KindOf(err) != apperrors.KindMalformed {
		t.Fatalf("expected KindMalformed for an event posted to a locked collection, got %v", err)
	}
}

func TestRebuildGrantsRequiresAdmin(t *testing.T) {
	svc := newService(t)
	mustCreateCollection(t, svc, "notes", true)

	err := svc.RebuildGrants(context.Background(), principal("alice", "C_NOTES_EDITOR"), "notes")
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("expected KindUnauthorized, got %v", err)
	}
}
