package query

import (
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/model"
)

// Scope narrows which documents a repository fetch should even consider,
// before the in-memory filter/sort runs (§4.3.5). It is computed from the
// caller's roles and the collection's OAO flag — never from the grant
// table, which is an optimization index, not an authority (§9).
type Scope struct {
	Stage      model.Stage
	OwnerID    string // non-empty means "restrict to this owner"
	Restricted bool   // true iff OwnerID is meaningful
}

// VisibilityScope computes the active-document visibility scope for a list
// or search request.
func VisibilityScope(collection string, oao bool, callerID string, roles authz.Roles) Scope {
	scope := Scope{Stage: model.StageActive}

	if !oao {
		return scope // reader/all-reader/admin already gated the call; unrestricted within the collection
	}

	if roles.CanReadAll(collection) {
		return scope
	}

	// OAO + reader only: owner_id = caller_id.
	scope.Restricted = true
	scope.OwnerID = callerID

	return scope
}

// RecoverablesScope computes the scope for the /api/recoverables/{c}
// endpoint: stage1 requires reader+remover, stage2 requires admin (§4.3.5).
func RecoverablesScope(collection string, roles authz.Roles) (Scope, bool) {
	switch {
	case roles.Has(collection, authz.CapCollectionAdmin):
		return Scope{Stage: model.StageDeletedStage2}, true
	case roles.CanRecoverStage1(collection):
		return Scope{Stage: model.StageDeletedStage1}, true
	default:
		return Scope{}, false
	}
}
