package events_test

import (
	"testing"
	"time"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/events"
	"github.com/foliva/docengine/pkg/internal/model"
)

func activeDoc() *model.Document {
	return &model.Document{ID: "doc-1", Collection: "shapes", OwnerID: "alice", Stage: model.StageActive}
}

func TestApplyInsertPayloadMarksNewWithUser(t *testing.T) {
	doc := activeDoc()

	outcome := events.ApplyInsert(doc, "alice", time.Now())

	if outcome.Event.Category != model.CategoryAudit {
		t.Fatalf("expected category 1, got %d", outcome.Event.Category)
	}

	want := `{"new":true,"user":"alice"}`
	if outcome.Event.PayloadJSON != want {
		t.Fatalf("expected payload %s, got %s", want, outcome.Event.PayloadJSON)
	}
}

func TestApplyReplacePayloadCarriesUser(t *testing.T) {
	doc := activeDoc()

	outcome, err := events.ApplyReplace(doc, "bob", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"user":"bob"}`
	if outcome.Event.PayloadJSON != want {
		t.Fatalf("expected payload %s, got %s", want, outcome.Event.PayloadJSON)
	}
}

func TestApplyDeleteTransitionsToStage1WithDeadline(t *testing.T) {
	doc := activeDoc()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	outcome, err := events.ApplyDelete(doc, "alice", now, events.StageWindow{Stage1Days: 7, Stage2Days: 30}, "{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.NewStage != model.StageDeletedStage1 {
		t.Fatalf("expected deleted_stage1, got %v", outcome.NewStage)
	}

	want := now.AddDate(0, 0, 7)
	if !outcome.NewDeadline.Equal(want) {
		t.Fatalf("expected deadline %v, got %v", want, outcome.NewDeadline)
	}

	if outcome.Event.Category != model.CategoryDelete {
		t.Fatalf("expected category 2, got %d", outcome.Event.Category)
	}
}

func TestApplyDeleteOnAlreadyDeletedDocumentFails(t *testing.T) {
	doc := activeDoc()
	doc.Stage = model.StageDeletedStage1

	_, err := events.ApplyDelete(doc, "alice", time.Now(), events.StageWindow{}, "{}")
	if apperrors.KindOf(err) != apperrors.KindAlreadyDeleted {
		t.Fatalf("expected KindAlreadyDeleted, got %v", apperrors.KindOf(err))
	}
}

func TestApplyRecoverOnActiveDocumentFails(t *testing.T) {
	doc := activeDoc()

	_, err := events.ApplyRecover(doc, "alice", time.Now(), "{}")
	if apperrors.KindOf(err) != apperrors.KindNotInDeletedStage {
		t.Fatalf("expected KindNotInDeletedStage, got %v", apperrors.KindOf(err))
	}
}

func TestApplyRecoverClearsDeadline(t *testing.T) {
	doc := activeDoc()
	doc.Stage = model.StageDeletedStage1

	outcome, err := events.ApplyRecover(doc, "alice", time.Now(), "{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.NewStage != model.StageActive {
		t.Fatalf("expected active, got %v", outcome.NewStage)
	}

	if outcome.NewDeadline != nil {
		t.Fatal("expected recover to clear the deletion deadline")
	}
}

func TestApplyGenericDoesNotChangeStage(t *testing.T) {
	doc := activeDoc()
	doc.Stage = model.StageDeletedStage1

	outcome := events.ApplyGeneric(doc, 42, "alice", time.Now(), `{"k":"v"}`)

	if outcome.NewStage != model.StageDeletedStage1 {
		t.Fatalf("expected generic events to leave stage untouched, got %v", outcome.NewStage)
	}

	if outcome.Event.Category != 42 {
		t.Fatalf("expected category 42, got %d", outcome.Event.Category)
	}
}

func TestCanPostCategoryDeleteNeedsReadAndRemove(t *testing.T) {
	readerOnly := authz.NewRoles([]string{"C_SHAPES_READER"})
	if events.CanPostCategory(model.CategoryDelete, "shapes", readerOnly, model.StageActive) {
		t.Fatal("reader alone should not be able to post a delete event")
	}

	readerAndRemover := authz.NewRoles([]string{"C_SHAPES_READER", "C_SHAPES_REMOVER"})
	if !events.CanPostCategory(model.CategoryDelete, "shapes", readerAndRemover, model.StageActive) {
		t.Fatal("reader+remover should be able to post a delete event")
	}
}

func TestCanPostCategoryRecoverStage2NeedsAdmin(t *testing.T) {
	readerAndRemover := authz.NewRoles([]string{"C_SHAPES_READER", "C_SHAPES_REMOVER"})
	if events.CanPostCategory(model.CategoryRecover, "shapes", readerAndRemover, model.StageDeletedStage2) {
		t.Fatal("reader+remover should not be able to recover a stage2 document")
	}

	admin := authz.NewRoles([]string{"C_SHAPES_ADMIN"})
	if !events.CanPostCategory(model.CategoryRecover, "shapes", admin, model.StageDeletedStage2) {
		t.Fatal("collection admin should be able to recover a stage2 document")
	}
}

func TestCanPostCategoryGenericNeedsReadAlone(t *testing.T) {
	editorOnly := authz.NewRoles([]string{"C_SHAPES_EDITOR"})
	if events.CanPostCategory(99, "shapes", editorOnly, model.StageActive) {
		t.Fatal("editor alone should not be able to post a generic event")
	}

	reader := authz.NewRoles([]string{"C_SHAPES_READER"})
	if !events.CanPostCategory(99, "shapes", reader, model.StageActive) {
		t.Fatal("reader should be able to post a generic event")
	}
}
