package repository_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/foliva/docengine/pkg/internal/model"
	dbc "github.com/foliva/docengine/pkg/internal/storage/db"
)

// newTestClient opens a fresh in-memory sqlite database and migrates the
// document-engine schema, mirroring what dbc.AutoMigrate does against a
// real database.
func newTestClient(t *testing.T) *dbc.Client {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}

	// A private in-memory database only exists on the connection that
	// created it, so the pool must never grow past one connection.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("underlying sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&model.Collection{}, &model.Document{}, &model.Event{}, &model.Grant{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return &dbc.Client{DB: gdb}
}
