// Package events implements the event applier and the two-stage deletion
// state machine it drives (§4.5).
package events

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/model"
)

// StageWindow fixes the deletion windows for a collection, in days, when
// deletion is enabled for it (FOLIVAFY_ENABLE_DELETION, §6).
type StageWindow struct {
	Stage1Days int
	Stage2Days int
}

// Outcome is the result of successfully applying an event: the document's
// new stage/deadline and the event row to append.
type Outcome struct {
	NewStage    model.Stage
	NewDeadline *time.Time
	Event       model.Event
}

// ApplyInsert builds the implicit category-1 event recorded on document
// creation. Its payload is {new: true, user: P} (§4.4).
func ApplyInsert(doc *model.Document, actor string, now time.Time) Outcome {
	payload, _ := sonic.Marshal(map[string]any{"new": true, "user": actor})

	return Outcome{
		NewStage: model.StageActive,
		Event: model.Event{
			DocumentID:  doc.ID,
			Category:    model.CategoryAudit,
			Actor:       actor,
			TS:          now,
			PayloadJSON: string(payload),
		},
	}
}

// ApplyReplace validates and builds the implicit category-1 event for a
// document replace. Replacing from any deleted stage is illegal — the
// facade never reaches this for a non-active document because such
// documents are already invisible outside the recoverables view, but the
// applier re-checks defensively.
func ApplyReplace(doc *model.Document, actor string, now time.Time) (Outcome, error) {
	if doc.Stage != model.StageActive {
		return Outcome{}, apperrors.New(apperrors.KindNotFound, "document not found")
	}

	payload, _ := sonic.Marshal(map[string]any{"user": actor})

	return Outcome{
		NewStage: model.StageActive,
		Event: model.Event{
			DocumentID:  doc.ID,
			Category:    model.CategoryAudit,
			Actor:       actor,
			TS:          now,
			PayloadJSON: string(payload),
		},
	}, nil
}

// ApplyDelete transitions active -> deleted_stage1 (category 2). Callers
// must have already checked CanDelete and that deletion is enabled for the
// collection; ApplyDelete itself only enforces the state machine.
func ApplyDelete(doc *model.Document, actor string, now time.Time, window StageWindow, payload string) (Outcome, error) {
	if doc.Stage != model.StageActive {
		return Outcome{}, apperrors.New(apperrors.KindAlreadyDeleted, "document already deleted")
	}

	deadline := now.AddDate(0, 0, window.Stage1Days)

	return Outcome{
		NewStage:    model.StageDeletedStage1,
		NewDeadline: &deadline,
		Event: model.Event{
			DocumentID:  doc.ID,
			Category:    model.CategoryDelete,
			Actor:       actor,
			TS:          now,
			PayloadJSON: payload,
		},
	}, nil
}

// ApplyRecover transitions deleted_stage1 -> active or deleted_stage2 ->
// active (category 3). The caller role check (stage1 needs reader+remover,
// stage2 needs admin) happens in the facade via authz.Roles.
func ApplyRecover(doc *model.Document, actor string, now time.Time, payload string) (Outcome, error) {
	if doc.Stage == model.StageActive {
		return Outcome{}, apperrors.New(apperrors.KindNotInDeletedStage, "document is not in deleted stage")
	}

	return Outcome{
		NewStage:    model.StageActive,
		NewDeadline: nil,
		Event: model.Event{
			DocumentID:  doc.ID,
			Category:    model.CategoryRecover,
			Actor:       actor,
			TS:          now,
			PayloadJSON: payload,
		},
	}, nil
}

// ApplyGeneric validates and builds an application-defined event (any
// category other than 1/2/3): append-only, no state change.
func ApplyGeneric(doc *model.Document, category int, actor string, now time.Time, payload string) Outcome {
	return Outcome{
		NewStage: doc.Stage,
		Event: model.Event{
			DocumentID:  doc.ID,
			Category:    category,
			Actor:       actor,
			TS:          now,
			PayloadJSON: payload,
		},
	}
}

// CanPostCategory enforces the minimum role needed to post a given event
// category (§4.5): delete/recover need their specific combinations, every
// other category needs reader, all-reader or collection admin.
func CanPostCategory(category int, collection string, roles authz.Roles, stage model.Stage) bool {
	switch category {
	case model.CategoryDelete:
		return roles.CanDelete(collection)
	case model.CategoryRecover:
		if stage == model.StageDeletedStage2 {
			return roles.CanRecoverStage2(collection)
		}

		return roles.CanRecoverStage1(collection)
	default:
		return roles.CanPostEvent(collection)
	}
}
