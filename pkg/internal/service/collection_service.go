// Package service hosts the collection facade (§4.4): the single
// coordinator that takes an authenticated caller plus a request, consults
// the authorizer, talks to the query planner or event applier, and writes
// through the grant engine to the store.
package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	appcache "github.com/foliva/docengine/pkg/cache"
	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/authz"
	"github.com/foliva/docengine/pkg/internal/events"
	"github.com/foliva/docengine/pkg/internal/model"
	"github.com/foliva/docengine/pkg/internal/query"
	"github.com/foliva/docengine/pkg/internal/repository"
	"github.com/foliva/docengine/pkg/internal/types"
	"github.com/foliva/docengine/pkg/metrics"
)

// collectionCacheTTL bounds how stale a cached Collection row may be.
const collectionCacheTTL = 30 * time.Second

var (
	documentWrites = metrics.NewCounter(
		"docengine_document_writes_total",
		"Document writes by collection and operation",
		[]string{"collection", "operation"},
	)

	eventsPosted = metrics.NewCounter(
		"docengine_events_posted_total",
		"Events posted by collection and category",
		[]string{"collection", "category"},
	)
)

// collectionNameRE is the wire-contract collection name grammar (§6).
var collectionNameRE = regexp.MustCompile(`^[a-z][-a-z0-9]*$`)

const maxCollectionNameLen = 32

// CollectionService is the facade described in §4.4.
type CollectionService struct {
	repo     *repository.Repository
	deletion func() configs.DeletionConfig
	now      func() time.Time
	cache    *appcache.Cache // optional: nil disables the collection-lookup cache
}

func New(repo *repository.Repository, deletionCfg func() configs.DeletionConfig) *CollectionService {
	return &CollectionService{repo: repo, deletion: deletionCfg, now: time.Now}
}

// WithCache enables the collection-lookup cache. Every facade operation
// resolves its collection row through getCollection rather than
// repo.GetCollection directly, since every one of them does that lookup
// first and collections are effectively write-once (§3).
func (s *CollectionService) WithCache(c *appcache.Cache) *CollectionService {
	s.cache = c
	return s
}

func (s *CollectionService) getCollection(ctx context.Context, name string) (*model.Collection, error) {
	if s.cache == nil {
		return s.repo.GetCollection(ctx, name)
	}

	col, err := appcache.GetOrSet(ctx, s.cache, "collection:"+name, func() (model.Collection, error) {
		c, err := s.repo.GetCollection(ctx, name)
		if err != nil {
			return model.Collection{}, err
		}

		return *c, nil
	}, collectionCacheTTL)
	if err != nil {
		return nil, err
	}

	return &col, nil
}

// CreateCollection implements the "create collection" operation (§4.4): the
// caller must be the global administrator and the name must be unique and
// well-formed.
func (s *CollectionService) CreateCollection(ctx context.Context, caller authz.Principal, name, title string, oao bool) error {
	if !caller.Roles.IsAdmin() {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	if err := validateCollectionName(name); err != nil {
		return err
	}

	if title == "" || len(title) > 150 {
		return apperrors.New(apperrors.KindMalformed, "title must be 1-150 characters")
	}

	return s.repo.CreateCollection(ctx, &model.Collection{Name: name, Title: title, OAO: oao})
}

// ListCollections implements "list collections" (§4.4): admin only.
func (s *CollectionService) ListCollections(ctx context.Context, caller authz.Principal, limit, offset int) ([]model.Collection, int64, error) {
	if !caller.Roles.IsAdmin() {
		return nil, 0, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	if limit <= 0 || limit > types.MaxLimit {
		limit = types.DefaultLimit
	}

	return s.repo.ListCollections(ctx, limit, offset)
}

// InsertDocument implements "insert document" (§4.4): requires editor role
// and an id not already present in any collection.
func (s *CollectionService) InsertDocument(ctx context.Context, caller authz.Principal, collectionName, id string, payload map[string]any) error {
	col, err := s.getCollection(ctx, collectionName)
	if err != nil {
		return err
	}

	if col.Locked {
		return apperrors.New(apperrors.KindMalformed, "collection is locked")
	}

	if !caller.Roles.CanEdit(collectionName) {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	if _, err := uuid.Parse(id); err != nil {
		return apperrors.New(apperrors.KindMalformed, "id must be a valid UUID")
	}

	if _, err := s.repo.GetDocumentAnyCollection(ctx, id); err == nil {
		return apperrors.New(apperrors.KindDuplicateDocument, "Duplicate document")
	}

	now := s.now()
	title := deriveTitle(payload)

	doc := &model.Document{
		ID:         id,
		Collection: collectionName,
		OwnerID:    caller.ID,
		Title:      title,
		TitleLower: lowerTitle(title),
		Stage:      model.StageActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	outcome := events.ApplyInsert(doc, caller.ID, now)

	if err := s.repo.InsertDocument(ctx, doc, &outcome.Event, payload, col.OAO); err != nil {
		return err
	}

	documentWrites.WithLabelValues(collectionName, "insert").Inc()

	return nil
}

// ReplaceDocument implements "replace document" (§4.4).
func (s *CollectionService) ReplaceDocument(ctx context.Context, caller authz.Principal, collectionName, id string, payload map[string]any) error {
	col, err := s.getCollection(ctx, collectionName)
	if err != nil {
		return err
	}

	if col.Locked {
		return apperrors.New(apperrors.KindMalformed, "collection is locked")
	}

	doc, err := s.repo.GetDocument(ctx, collectionName, id)
	if err != nil {
		return err
	}

	if !caller.Roles.CanEdit(collectionName) {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	if col.OAO && doc.OwnerID != caller.ID {
		// OAO "not owner" is reported as not-found, never unauthorized (§7).
		return apperrors.New(apperrors.KindNotFound, "document not found")
	}

	now := s.now()

	outcome, err := events.ApplyReplace(doc, caller.ID, now)
	if err != nil {
		return err
	}

	title := deriveTitle(payload)

	if err := s.repo.ReplaceDocument(ctx, id, title, payload, &outcome.Event, now); err != nil {
		return err
	}

	documentWrites.WithLabelValues(collectionName, "replace").Inc()

	return nil
}

// ReadDocument implements "read document by id" (§4.4): returns the
// payload plus the full event trail, newest-first.
func (s *CollectionService) ReadDocument(ctx context.Context, caller authz.Principal, collectionName, id string) (*model.Document, map[string]any, []model.Event, error) {
	col, err := s.getCollection(ctx, collectionName)
	if err != nil {
		return nil, nil, nil, err
	}

	doc, err := s.repo.GetDocument(ctx, collectionName, id)
	if err != nil {
		return nil, nil, nil, err
	}

	if doc.Stage != model.StageActive {
		// Deleted documents are invisible outside the recoverables view (§4.5).
		return nil, nil, nil, apperrors.New(apperrors.KindNotFound, "document not found")
	}

	if !s.canSee(collectionName, col.OAO, caller, doc.OwnerID) {
		return nil, nil, nil, apperrors.New(apperrors.KindNotFound, "document not found")
	}

	candidate, err := query.DecodeCandidate(doc)
	if err != nil {
		return nil, nil, nil, err
	}

	trail, err := s.repo.EventTrail(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	return doc, candidate.Payload, trail, nil
}

// canSee implements the visibility check of §4.3.5/§7: role-authoritative,
// never derived from the grant table.
func (s *CollectionService) canSee(collection string, oao bool, caller authz.Principal, ownerID string) bool {
	if !oao {
		return caller.Roles.CanRead(collection)
	}

	if caller.Roles.CanReadAll(collection) {
		return true
	}

	return caller.Roles.CanRead(collection) && ownerID == caller.ID
}

// Search implements "list/search documents" (§4.3, §4.4).
func (s *CollectionService) Search(ctx context.Context, caller authz.Principal, collectionName string, req types.SearchRequest) (types.SearchResult, error) {
	col, err := s.getCollection(ctx, collectionName)
	if err != nil {
		return types.SearchResult{}, err
	}

	if !caller.Roles.CanRead(collectionName) {
		return types.SearchResult{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	scope := query.VisibilityScope(collectionName, col.OAO, caller.ID, caller.Roles)

	docs, err := s.repo.ListCandidates(ctx, collectionName, scope.Stage, scope.OwnerID)
	if err != nil {
		return types.SearchResult{}, err
	}

	candidates := make([]query.Candidate, 0, len(docs))

	for i := range docs {
		c, err := query.DecodeCandidate(&docs[i])
		if err != nil {
			return types.SearchResult{}, err
		}

		candidates = append(candidates, c)
	}

	return query.Plan(req, candidates), nil
}

// Recoverables implements GET /api/recoverables/{c} (§4.3.5, §6).
func (s *CollectionService) Recoverables(ctx context.Context, caller authz.Principal, collectionName string, req types.SearchRequest) (types.SearchResult, error) {
	scope, ok := query.RecoverablesScope(collectionName, caller.Roles)
	if !ok {
		return types.SearchResult{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	docs, err := s.repo.ListCandidates(ctx, collectionName, scope.Stage, "")
	if err != nil {
		return types.SearchResult{}, err
	}

	candidates := make([]query.Candidate, 0, len(docs))

	for i := range docs {
		c, err := query.DecodeCandidate(&docs[i])
		if err != nil {
			return types.SearchResult{}, err
		}

		candidates = append(candidates, c)
	}

	return query.Plan(req, candidates), nil
}

// PostEvent implements the "post event" operation (§4.4, §4.5): resolves
// the document's home collection, checks the role combination the event's
// category requires, then dispatches to the event applier and writes the
// resulting stage transition plus the event row.
func (s *CollectionService) PostEvent(ctx context.Context, caller authz.Principal, documentID string, category int, payload map[string]any) error {
	doc, err := s.repo.GetDocumentAnyCollection(ctx, documentID)
	if err != nil {
		return err
	}

	col, err := s.getCollection(ctx, doc.Collection)
	if err != nil {
		return err
	}

	if col.Locked {
		return apperrors.New(apperrors.KindMalformed, "collection is locked")
	}

	if !events.CanPostCategory(category, col.Name, caller.Roles, doc.Stage) {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	if col.OAO && !caller.Roles.CanReadAll(col.Name) && doc.OwnerID != caller.ID {
		return apperrors.New(apperrors.KindNotFound, "document not found")
	}

	payloadJSON, err := sonic.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "marshal event payload", err)
	}

	now := s.now()

	var outcome events.Outcome

	switch category {
	case model.CategoryDelete:
		deletion := s.deletion()

		rule, enabled := deletion.Enabled(col.Name)
		if !enabled {
			return apperrors.New(apperrors.KindMalformed, "deletion is not enabled for this collection")
		}

		outcome, err = events.ApplyDelete(doc, caller.ID, now, events.StageWindow{
			Stage1Days: rule.Stage1Days,
			Stage2Days: rule.Stage2Days,
		}, string(payloadJSON))
	case model.CategoryRecover:
		outcome, err = events.ApplyRecover(doc, caller.ID, now, string(payloadJSON))
	default:
		outcome = events.ApplyGeneric(doc, category, caller.ID, now, string(payloadJSON))
	}

	if err != nil {
		return err
	}

	if err := s.repo.ApplyDocumentTransition(ctx, documentID, outcome.NewStage, outcome.NewDeadline, &outcome.Event); err != nil {
		return err
	}

	eventsPosted.WithLabelValues(col.Name, strconv.Itoa(category)).Inc()

	return nil
}

// RebuildGrants implements the "rebuild grants" / maintenance operation
// (§4.2, §4.4): admin only.
func (s *CollectionService) RebuildGrants(ctx context.Context, caller authz.Principal, collectionName string) error {
	if !caller.Roles.IsAdmin() {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}

	col, err := s.getCollection(ctx, collectionName)
	if err != nil {
		return err
	}

	return s.repo.RebuildGrants(ctx, collectionName, col.OAO)
}

func validateCollectionName(name string) error {
	if len(name) == 0 || len(name) > maxCollectionNameLen {
		return apperrors.New(apperrors.KindMalformed, "collection name must be 1-32 characters")
	}

	if !collectionNameRE.MatchString(name) {
		return apperrors.New(apperrors.KindMalformed, "collection name must match ^[a-z][-a-z0-9]*$")
	}

	return nil
}

func deriveTitle(payload map[string]any) string {
	if t, ok := payload["title"].(string); ok {
		return t
	}

	return ""
}

func lowerTitle(title string) string {
	return strings.ToLower(title)
}
