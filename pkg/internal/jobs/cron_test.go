package jobs

import (
	"testing"

	"github.com/foliva/docengine/pkg/internal/model"
)

func TestSystemPrincipalGrantsOnlyEditorAndAllReader(t *testing.T) {
	p := systemPrincipal("folivafy-mail")

	if !p.Roles.CanEdit("folivafy-mail") {
		t.Fatal("expected the system principal to hold editor on the collection")
	}

	if !p.Roles.CanReadAll("folivafy-mail") {
		t.Fatal("expected the system principal to hold all-reader on the collection")
	}

	if p.Roles.IsAdmin() {
		t.Fatal("the system principal must never hold the global administrator role")
	}
}

func TestAlreadyProcessedDetectsMailReceiptEvent(t *testing.T) {
	trail := []model.Event{
		{Category: model.CategoryAudit},
		{Category: model.CategoryMailReceipt},
	}

	if !alreadyProcessed(trail) {
		t.Fatal("expected a mail-receipt event to mark the document as processed")
	}
}

func TestAlreadyProcessedFalseWithoutReceipt(t *testing.T) {
	trail := []model.Event{{Category: model.CategoryAudit}}

	if alreadyProcessed(trail) {
		t.Fatal("expected no false positive without a mail-receipt event")
	}
}
