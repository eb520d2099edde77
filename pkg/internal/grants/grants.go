// Package grants computes and materializes the grant rows the query
// planner uses as a visibility index for OAO collections (§4.2). The
// authorizer remains authoritative; this table is purely an optimization.
package grants

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foliva/docengine/pkg/internal/model"
)

const rebuildBatchSize = 500

// ForDocument returns the grant row a newly created/replaced document needs,
// or nil if the collection is non-OAO (no per-document row required).
func ForDocument(oao bool, documentID, ownerID string) *model.Grant {
	if !oao {
		return nil
	}

	return &model.Grant{DocumentID: documentID, UserID: ownerID, Relation: "reader"}
}

// Upsert writes (or replaces) the grant row for one document inside an
// existing transaction, called from the same transaction the facade uses
// to write the document itself — so a reader never observes a document
// without its grant row, or vice versa.
func Upsert(tx *gorm.DB, grant *model.Grant) error {
	if grant == nil {
		return nil
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"relation"}),
	}).Create(grant).Error
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}

	return nil
}

// Rebuild deletes and regenerates every grant row for a collection from
// current document ownership, in bounded batches so an arbitrarily large
// collection never holds one long transaction (§4.2). Each batch is
// transactional and per-document atomic: a reader mid-rebuild sees either
// the old or the new row for any given document, never a partial mix.
// A non-OAO collection needs no grant rows at all (§4.2); stale rows are
// still cleared in case the collection was ever OAO in the past.
func Rebuild(ctx context.Context, db *gorm.DB, collection string, oao bool) error {
	if !oao {
		if err := db.WithContext(ctx).
			Where("document_id IN (SELECT id FROM documents WHERE collection = ?)", collection).
			Delete(&model.Grant{}).Error; err != nil {
			return fmt.Errorf("rebuild grants: clear stale rows: %w", err)
		}

		return nil
	}

	var lastID string

	for {
		var batch []model.Document

		q := db.WithContext(ctx).
			Select("id", "owner_id").
			Where("collection = ?", collection).
			Order("id asc").
			Limit(rebuildBatchSize)

		if lastID != "" {
			q = q.Where("id > ?", lastID)
		}

		if err := q.Find(&batch).Error; err != nil {
			return fmt.Errorf("rebuild grants: fetch batch: %w", err)
		}

		if len(batch) == 0 {
			return nil
		}

		ids := make([]string, 0, len(batch))
		rows := make([]model.Grant, 0, len(batch))
		for _, doc := range batch {
			ids = append(ids, doc.ID)
			rows = append(rows, model.Grant{DocumentID: doc.ID, UserID: doc.OwnerID, Relation: "reader"})
		}

		if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("document_id IN ?", ids).Delete(&model.Grant{}).Error; err != nil {
				return err
			}

			return tx.CreateInBatches(rows, rebuildBatchSize).Error
		}); err != nil {
			return fmt.Errorf("rebuild grants: write batch: %w", err)
		}

		lastID = batch[len(batch)-1].ID
	}
}
