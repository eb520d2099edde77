package grants_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/foliva/docengine/pkg/internal/grants"
	"github.com/foliva/docengine/pkg/internal/model"
)

func newGrantsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("underlying sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&model.Document{}, &model.Grant{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return gdb
}

func TestUpsertWritesThenReplacesGrantRow(t *testing.T) {
	db := newGrantsTestDB(t)

	grant := &model.Grant{DocumentID: "doc-1", UserID: "alice", Relation: "reader"}
	if err := db.Transaction(func(tx *gorm.DB) error { return grants.Upsert(tx, grant) }); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Re-upserting the same (document, user) pair must replace, not
	// duplicate, the row — the OnConflict clause is the only thing
	// standing between this and a primary-key violation.
	grant.Relation = "reader"
	if err := db.Transaction(func(tx *gorm.DB) error { return grants.Upsert(tx, grant) }); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	var count int64
	if err := db.Model(&model.Grant{}).Where("document_id = ? AND user_id = ?", "doc-1", "alice").Count(&count).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}

	if count != 1 {
		t.Fatalf("expected exactly one grant row, got %d", count)
	}
}

func TestUpsertNilGrantIsNoop(t *testing.T) {
	db := newGrantsTestDB(t)

	if err := db.Transaction(func(tx *gorm.DB) error { return grants.Upsert(tx, nil) }); err != nil {
		t.Fatalf("expected a nil grant to be a no-op, got %v", err)
	}
}

func TestRebuildRegeneratesGrantsFromDocumentOwnership(t *testing.T) {
	db := newGrantsTestDB(t)
	ctx := context.Background()

	docs := []model.Document{
		{ID: "doc-1", Collection: "shapes", OwnerID: "alice", Stage: model.StageActive},
		{ID: "doc-2", Collection: "shapes", OwnerID: "bob", Stage: model.StageActive},
		{ID: "doc-3", Collection: "other", OwnerID: "carol", Stage: model.StageActive},
	}

	for i := range docs {
		if err := db.Create(&docs[i]).Error; err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}

	// A stale row for a document outside the target collection must
	// survive the rebuild untouched.
	if err := db.Create(&model.Grant{DocumentID: "doc-3", UserID: "carol", Relation: "reader"}).Error; err != nil {
		t.Fatalf("seed stale grant: %v", err)
	}

	if err := grants.Rebuild(ctx, db, "shapes", true); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	var rows []model.Grant
	if err := db.Order("document_id asc").Find(&rows).Error; err != nil {
		t.Fatalf("list grants: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 grant rows (2 rebuilt + 1 untouched), got %+v", rows)
	}

	if rows[0].DocumentID != "doc-1" || rows[0].UserID != "alice" {
		t.Fatalf("unexpected row for doc-1: %+v", rows[0])
	}

	if rows[1].DocumentID != "doc-2" || rows[1].UserID != "bob" {
		t.Fatalf("unexpected row for doc-2: %+v", rows[1])
	}

	if rows[2].DocumentID != "doc-3" || rows[2].UserID != "carol" {
		t.Fatalf("unexpected stale row for doc-3: %+v", rows[2])
	}
}

func TestRebuildNonOAOCollectionLeavesNoGrants(t *testing.T) {
	db := newGrantsTestDB(t)
	ctx := context.Background()

	doc := model.Document{ID: "doc-1", Collection: "notes", OwnerID: "alice", Stage: model.StageActive}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}

	if err := db.Create(&model.Grant{DocumentID: "doc-1", UserID: "alice", Relation: "reader"}).Error; err != nil {
		t.Fatalf("seed stale grant: %v", err)
	}

	if err := grants.Rebuild(ctx, db, "notes", false); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	var count int64
	if err := db.Model(&model.Grant{}).Where("document_id = ?", "doc-1").Count(&count).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}

	if count != 0 {
		t.Fatalf("expected no grant rows for a non-OAO collection, got %d", count)
	}
}
