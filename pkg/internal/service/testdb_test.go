package service_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/foliva/docengine/pkg/internal/model"
	"github.com/foliva/docengine/pkg/internal/repository"
	dbc "github.com/foliva/docengine/pkg/internal/storage/db"
)

// newTestRepo opens a fresh in-memory sqlite database, migrates the schema,
// and returns a repository over it — the facade has no collaborator
// narrower than the repository to fake, so its tests exercise a real store.
// It also returns the underlying *gorm.DB for tests that need to poke at
// rows the facade itself has no operation to produce (e.g. a locked
// collection).
func newTestRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
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

	if err := gdb.AutoMigrate(&model.Collection{}, &model.Document{}, &model.Event{}, &model.Grant{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return repository.New(&dbc.Client{DB: gdb}), gdb
}
