// Package repository is the transactional persistence layer the collection
// facade drives: collection/document/event/grant writes that must succeed
// or fail together (§5 — each facade operation is one logical transaction).
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/grants"
	"github.com/foliva/docengine/pkg/internal/model"
	dbc "github.com/foliva/docengine/pkg/internal/storage/db"
)

// Repository wraps the relational store client with the document-engine
// specific transactional operations.
type Repository struct {
	db *gorm.DB
}

func New(client *dbc.Client) *Repository {
	return &Repository{db: client.DB}
}

// CreateCollection inserts a new Collection row, translating the unique
// constraint violation into apperrors.KindDuplicateCollection.
func (r *Repository) CreateCollection(ctx context.Context, c *model.Collection) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.KindDuplicateCollection, "Duplicate collection name")
		}

		return apperrors.Wrap(apperrors.KindInternal, "create collection", err)
	}

	return nil
}

// GetCollection fetches a collection by name, or apperrors.KindNotFound.
func (r *Repository) GetCollection(ctx context.Context, name string) (*model.Collection, error) {
	var c model.Collection

	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "collection not found")
		}

		return nil, apperrors.Wrap(apperrors.KindInternal, "get collection", err)
	}

	return &c, nil
}

// ListCollections returns a page of collections ordered by name.
func (r *Repository) ListCollections(ctx context.Context, limit, offset int) ([]model.Collection, int64, error) {
	var (
		rows  []model.Collection
		total int64
	)

	if err := r.db.WithContext(ctx).Model(&model.Collection{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "count collections", err)
	}

	if err := r.db.WithContext(ctx).Order("name asc").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "list collections", err)
	}

	return rows, total, nil
}

// InsertDocument writes a new document, its implicit category-1 event, and
// its grant row (if OAO) inside one transaction. A global id collision is
// reported as apperrors.KindDuplicateDocument — the store's unique
// constraint on documents.id is the backstop against races (§5).
func (r *Repository) InsertDocument(ctx context.Context, doc *model.Document, ev *model.Event, payload map[string]any, oao bool) error {
	payloadJSON, err := sonic.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "marshal payload", err)
	}

	doc.PayloadJSON = string(payloadJSON)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.New(apperrors.KindDuplicateDocument, "Duplicate document")
			}

			return apperrors.Wrap(apperrors.KindInternal, "insert document", err)
		}

		ev.DocumentID = doc.ID

		if err := tx.Create(ev).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "insert creation event", err)
		}

		if g := grants.ForDocument(oao, doc.ID, doc.OwnerID); g != nil {
			if err := grants.Upsert(tx, g); err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "write grant", err)
			}
		}

		return nil
	})
}

// ReplaceDocument rewrites a document's payload/title and records its
// implicit category-1 event, inside one transaction (row-locking the
// document serializes concurrent posts against it, §5).
func (r *Repository) ReplaceDocument(ctx context.Context, id string, title string, payload map[string]any, ev *model.Event, now time.Time) error {
	payloadJSON, err := sonic.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "marshal payload", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Document{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"title":        title,
				"title_lower":  lowerOrEmpty(title),
				"payload_json": string(payloadJSON),
				"updated_at":   now,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.KindInternal, "replace document", res.Error)
		}

		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.KindNotFound, "document not found")
		}

		ev.DocumentID = id

		if err := tx.Create(ev).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "insert replace event", err)
		}

		return nil
	})
}

// GetDocument fetches one document by (collection, id) pair. Resolving via
// the wrong collection name yields not-found, never a cross-collection
// leak (§3).
func (r *Repository) GetDocument(ctx context.Context, collection, id string) (*model.Document, error) {
	var doc model.Document

	err := r.db.WithContext(ctx).
		Where("id = ? AND collection = ?", id, collection).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "document not found")
		}

		return nil, apperrors.Wrap(apperrors.KindInternal, "get document", err)
	}

	return &doc, nil
}

// GetDocumentAnyCollection fetches by id alone, used internally by the
// cross-collection uniqueness check on insert (§3, §8).
func (r *Repository) GetDocumentAnyCollection(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "document not found")
		}

		return nil, apperrors.Wrap(apperrors.KindInternal, "get document", err)
	}

	return &doc, nil
}

// ListCandidates fetches every document in (collection, stage) — and,
// if ownerID is non-empty, owned by ownerID — for the query planner to
// filter/sort in memory (see pkg/internal/query).
func (r *Repository) ListCandidates(ctx context.Context, collection string, stage model.Stage, ownerID string) ([]model.Document, error) {
	q := r.db.WithContext(ctx).Where("collection = ? AND stage = ?", collection, stage)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}

	var rows []model.Document
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "list candidates", err)
	}

	return rows, nil
}

// ApplyDocumentTransition updates a document's stage/deadline and appends
// an event, in one transaction — used by delete/recover/generic event
// posting (§4.5).
func (r *Repository) ApplyDocumentTransition(ctx context.Context, id string, newStage model.Stage, deadline *time.Time, ev *model.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Document{}).Where("id = ?", id).Updates(map[string]any{
			"stage":             newStage,
			"deletion_deadline": deadline,
		})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.KindInternal, "apply transition", res.Error)
		}

		ev.DocumentID = id

		if err := tx.Create(ev).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "insert event", err)
		}

		return nil
	})
}

// EventTrail returns every event for a document, newest-first (§4.5).
func (r *Repository) EventTrail(ctx context.Context, documentID string) ([]model.Event, error) {
	var rows []model.Event

	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("id desc").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "list event trail", err)
	}

	return rows, nil
}

// ListExpiredStage1 returns every deleted_stage1 document whose deadline
// has passed — candidates for the automatic advance to deleted_stage2
// (§9, SPEC_FULL.md's periodic-task note).
func (r *Repository) ListExpiredStage1(ctx context.Context, before time.Time) ([]model.Document, error) {
	var rows []model.Document

	err := r.db.WithContext(ctx).
		Where("stage = ? AND deletion_deadline IS NOT NULL AND deletion_deadline <= ?", model.StageDeletedStage1, before).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "list expired stage1 documents", err)
	}

	return rows, nil
}

// ListExpiredStage2 returns every deleted_stage2 document whose deadline
// has passed — candidates for physical purge.
func (r *Repository) ListExpiredStage2(ctx context.Context, before time.Time) ([]model.Document, error) {
	var rows []model.Document

	err := r.db.WithContext(ctx).
		Where("stage = ? AND deletion_deadline IS NOT NULL AND deletion_deadline <= ?", model.StageDeletedStage2, before).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "list expired stage2 documents", err)
	}

	return rows, nil
}

// PurgeDocument permanently removes a document and its events/grants, in
// one transaction. Only the deletion-purge job calls this — it bypasses
// the facade entirely, since a physically purged document has no caller
// to authorize against (§4.5, "purged by a periodic task outside the
// core's critical path").
func (r *Repository) PurgeDocument(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Event{}).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "purge events", err)
		}

		if err := tx.Where("document_id = ?", id).Delete(&model.Grant{}).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "purge grants", err)
		}

		if err := tx.Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "purge document", err)
		}

		return nil
	})
}

// RebuildGrants delegates to the grants package for the named collection.
func (r *Repository) RebuildGrants(ctx context.Context, collection string, oao bool) error {
	if err := grants.Rebuild(ctx, r.db, collection, oao); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "rebuild grants", err)
	}

	return nil
}

func lowerOrEmpty(s string) string {
	return strings.ToLower(s)
}

func isUniqueViolation(err error) bool {
	// Dialect-specific unique-constraint error strings (pq, mysql, sqlite)
	// are matched loosely since GORM does not expose a dialect-neutral
	// sentinel for this across postgres/mysql/sqlite drivers.
	msg := fmt.Sprint(err)

	for _, needle := range []string{"UNIQUE constraint", "Duplicate entry", "duplicate key value", "unique constraint"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}

	return false
}
