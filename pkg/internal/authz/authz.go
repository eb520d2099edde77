// Package authz resolves a caller's role-string set against a collection
// name to a capability set (§4.1). It is purely functional over
// (collection name, role set) — it never touches the store.
package authz

import "strings"

const adminRole = "A_FOLIVAFY_COLLECTION_EDITOR"

// Capability is a single permission an authenticated caller may hold on a
// collection. Capabilities are non-exclusive: a caller can hold several at
// once (an editor who is also a reader, for instance).
type Capability int

const (
	CapAdmin Capability = iota
	CapReader
	CapAllReader
	CapEditor
	CapCollectionAdmin
	CapRemover
)

// Roles is a caller's raw set of role strings, as extracted from the bearer
// token claims.
type Roles map[string]struct{}

// NewRoles builds a Roles set from a claim list.
func NewRoles(raw []string) Roles {
	r := make(Roles, len(raw))
	for _, s := range raw {
		r[s] = struct{}{}
	}

	return r
}

func (r Roles) has(role string) bool {
	_, ok := r[role]
	return ok
}

// IsAdmin reports whether the caller holds the global administrator role,
// which can create collections, rebuild grants and list collections.
func (r Roles) IsAdmin() bool {
	return r.has(adminRole)
}

func collectionRole(name, suffix string) string {
	return "C_" + strings.ToUpper(name) + "_" + suffix
}

// Has reports whether the caller holds the given capability on the named
// collection.
func (r Roles) Has(collection string, cap Capability) bool {
	switch cap {
	case CapAdmin:
		return r.IsAdmin()
	case CapReader:
		return r.has(collectionRole(collection, "READER"))
	case CapAllReader:
		return r.has(collectionRole(collection, "ALLREADER"))
	case CapEditor:
		return r.has(collectionRole(collection, "EDITOR"))
	case CapCollectionAdmin:
		return r.has(collectionRole(collection, "ADMIN"))
	case CapRemover:
		return r.has(collectionRole(collection, "REMOVER"))
	default:
		return false
	}
}

// CanRead reports whether the caller may read documents in the collection at
// all (the coarse check used to gate list/search before the fine-grained
// visibility predicate in pkg/internal/query runs).
func (r Roles) CanRead(collection string) bool {
	return r.Has(collection, CapReader) || r.Has(collection, CapAllReader) || r.Has(collection, CapCollectionAdmin)
}

// CanReadAll reports whether the caller bypasses OAO gating entirely.
func (r Roles) CanReadAll(collection string) bool {
	return r.Has(collection, CapAllReader) || r.Has(collection, CapCollectionAdmin)
}

// CanEdit reports whether the caller may create/replace documents.
func (r Roles) CanEdit(collection string) bool {
	return r.Has(collection, CapEditor)
}

// CanRemove reports whether the caller may post delete/recover events,
// subject to also holding a read capability per §4.5.
func (r Roles) CanRemove(collection string) bool {
	return r.Has(collection, CapRemover)
}

// CanRecoverStage1 reports whether the caller may recover a stage-1 deleted
// document: a read capability (see CanRead) plus remover.
func (r Roles) CanRecoverStage1(collection string) bool {
	return r.CanRead(collection) && r.CanRemove(collection)
}

// CanRecoverStage2 reports whether the caller may recover a stage-2 deleted
// document: collection admin only.
func (r Roles) CanRecoverStage2(collection string) bool {
	return r.Has(collection, CapCollectionAdmin)
}

// CanPostEvent reports whether the caller may post an application-defined
// event (any category other than delete/recover): reader, all-reader or
// collection admin; editor alone is insufficient.
func (r Roles) CanPostEvent(collection string) bool {
	return r.Has(collection, CapReader) || r.Has(collection, CapAllReader) || r.Has(collection, CapCollectionAdmin)
}

// CanDelete reports whether the caller may post a delete event: a read
// capability (see CanRead) AND remover.
func (r Roles) CanDelete(collection string) bool {
	return r.CanRead(collection) && r.CanRemove(collection)
}
