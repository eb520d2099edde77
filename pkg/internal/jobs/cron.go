// Package jobs registers the document engine's background tasks on the
// shared scheduler (§5, §6): the mail worker that drains folivafy-mail,
// and the deletion sweep that advances/purges expired deleted documents.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/mail"
	"github.com/foliva/docengine/pkg/internal/model"
	"github.com/foliva/docengine/pkg/internal/repository"
	"github.com/foliva/docengine/pkg/internal/service"
	dbc "github.com/foliva/docengine/pkg/internal/storage/db"
	"github.com/foliva/docengine/pkg/internal/types"
	"github.com/foliva/docengine/pkg/log"
	"github.com/foliva/docengine/pkg/scheduler"
)

// systemPrincipal is the caller identity the background jobs act as — a
// fixed role set scoped to exactly what each job needs, never the global
// administrator bypass, so a job can never do more than a real client of
// the same collection could (§4.5's "the mail worker... is a client of
// the core like any other").
func systemPrincipal(collection string, extraRoles ...string) authz.Principal {
	upper := strings.ToUpper(collection)
	roles := append([]string{
		"C_" + upper + "_EDITOR",
		"C_" + upper + "_ALLREADER",
	}, extraRoles...)

	return authz.Principal{ID: "system:jobs", Roles: authz.NewRoles(roles)}
}

// RegisterCronJobs wires the mail worker and deletion sweep onto sched.
func RegisterCronJobs(sched *scheduler.Scheduler, svc *service.CollectionService, repo *repository.Repository, sender *mail.Sender, deletionCfg func() configs.DeletionConfig, cronIntervalMinutes int) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	mailCron := fmt.Sprintf("*/%d * * * *", max(cronIntervalMinutes, 1))

	if err := sched.AddCron(JobMailWorker, mailCron, func(ctx context.Context) {
		runMailWorker(ctx, svc, sender)
	}, context.Background()); err != nil {
		return fmt.Errorf("register mail worker: %w", err)
	}

	if err := sched.AddCron(JobDeletionAdvance, CronDeletionAdvance, func(ctx context.Context) {
		runDeletionSweep(ctx, repo, deletionCfg)
	}, context.Background()); err != nil {
		return fmt.Errorf("register deletion sweep: %w", err)
	}

	return nil
}

// runMailWorker lists every active document in folivafy-mail through the
// ordinary collection facade — the mail worker is a client of the core
// like any other (§4.5) — skips ones that already carry a delivery
// receipt, attempts delivery for the rest, and records the outcome as a
// category-100 event via PostEvent.
//
// It deliberately never calls ReplaceDocument: under OAO a replace is only
// legal for the document's own owner (§4.4's replace-document row), and
// mail documents are owned by whichever caller enqueued them, not by this
// job. PostEvent, unlike replace, lets an all-reader bypass OAO ownership
// (§4.5), so the worker records its result as an event instead of
// rewriting the payload.
func runMailWorker(ctx context.Context, svc *service.CollectionService, sender *mail.Sender) {
	l := log.Logger().With().Str("job", JobMailWorker).Logger()
	principal := systemPrincipal(dbc.SystemMailCollection)

	result, err := svc.Search(ctx, principal, dbc.SystemMailCollection, types.SearchRequest{Limit: types.MaxLimit})
	if err != nil {
		l.Error().Err(err).Msg("list mail queue failed")
		return
	}

	for _, row := range result.Items {
		_, payload, trail, err := svc.ReadDocument(ctx, principal, dbc.SystemMailCollection, row.ID)
		if err != nil {
			l.Error().Err(err).Str("document", row.ID).Msg("read mail document failed")
			continue
		}

		if alreadyProcessed(trail) {
			continue
		}

		to, _ := payload["to"].(string)
		subject, _ := payload["subject"].(string)
		body, _ := payload["body"].(string)

		status := "sent"
		if err := sender.Send(ctx, []string{to}, subject, body); err != nil {
			l.Warn().Err(err).Str("document", row.ID).Msg("send mail failed")
			status = "failed"
		}

		receipt := map[string]any{"status": status}
		if err := svc.PostEvent(ctx, principal, row.ID, model.CategoryMailReceipt, receipt); err != nil {
			l.Error().Err(err).Str("document", row.ID).Msg("record delivery receipt failed")
		}
	}
}

func alreadyProcessed(trail []model.Event) bool {
	for _, ev := range trail {
		if ev.Category == model.CategoryMailReceipt {
			return true
		}
	}

	return false
}

// runDeletionSweep advances deleted_stage1 documents past their deadline
// to deleted_stage2, then physically purges deleted_stage2 documents past
// theirs — the periodic task outside the core's critical path that §4.5
// describes but leaves to a boundary collaborator.
func runDeletionSweep(ctx context.Context, repo *repository.Repository, deletionCfg func() configs.DeletionConfig) {
	l := log.Logger().With().Str("job", JobDeletionAdvance).Logger()
	now := time.Now()
	cfg := deletionCfg()

	expired1, err := repo.ListExpiredStage1(ctx, now)
	if err != nil {
		l.Error().Err(err).Msg("list expired stage1 documents failed")
	}

	for _, doc := range expired1 {
		rule, ok := cfg.Enabled(doc.Collection)
		if !ok {
			continue
		}

		deadline := now.AddDate(0, 0, rule.Stage2Days)
		ev := model.Event{Category: model.CategoryLifecycle, Actor: "system:jobs", TS: now}

		if err := repo.ApplyDocumentTransition(ctx, doc.ID, model.StageDeletedStage2, &deadline, &ev); err != nil {
			l.Error().Err(err).Str("document", doc.ID).Msg("advance to stage2 failed")
		}
	}

	expired2, err := repo.ListExpiredStage2(ctx, now)
	if err != nil {
		l.Error().Err(err).Msg("list expired stage2 documents failed")
	}

	for _, doc := range expired2 {
		if err := repo.PurgeDocument(ctx, doc.ID); err != nil {
			l.Error().Err(err).Str("document", doc.ID).Msg("purge document failed")
		}
	}
}
