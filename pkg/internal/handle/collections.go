package handle

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foliva/docengine/pkg/internal/apperrors"
	"github.com/foliva/docengine/pkg/internal/query"
	"github.com/foliva/docengine/pkg/internal/types"
)

// CreateCollection handles POST /api/collections (§6).
//
//	@Summary	Create a collection
//	@Tags		collections
//	@Accept		json
//	@Param		body	types.CreateCollectionRequest	true	"collection"
//	@Success	201	{string}	string
//	@Failure	409	{object}	types.ErrorBody
//	@Router		/api/collections [post]
func (h *Handlers) CreateCollection(c *gin.Context) {
	var req types.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorBody{Message: "malformed request"})
		return
	}

	if err := h.svc.CreateCollection(c.Request.Context(), principal(c), req.Name, req.Title, req.OAO); err != nil {
		writeError(c, err)
		return
	}

	c.String(http.StatusCreated, "Collection %s created", req.Name)
}

// ListCollections handles GET /api/collections (§6).
//
//	@Summary	List collections
//	@Tags		collections
//	@Produce	json
//	@Success	200	{object}	types.CollectionsList
//	@Router		/api/collections [get]
func (h *Handlers) ListCollections(c *gin.Context) {
	limit := queryInt(c, "limit", types.DefaultLimit)
	offset := queryInt(c, "offset", 0)

	cols, total, err := h.svc.ListCollections(c.Request.Context(), principal(c), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]types.CollectionView, 0, len(cols))

	for _, col := range cols {
		items = append(items, types.CollectionView{
			Name: col.Name, Title: col.Title, OAO: col.OAO, Locked: col.Locked,
			CreatedAt: col.CreatedAt, UpdatedAt: col.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, types.CollectionsList{Limit: limit, Offset: offset, Total: total, Items: items})
}

// ListDocuments handles GET /api/collections/{c}: the compact query-string
// dialect (limit, offset, exactTitle, extraFields, sort, pfilter) (§6).
//
//	@Summary	List or search documents via the query-string dialect
//	@Tags		documents
//	@Produce	json
//	@Param		c	path	string	true	"collection"
//	@Success	200	{object}	types.SearchResult
//	@Router		/api/collections/{c} [get]
func (h *Handlers) ListDocuments(c *gin.Context) {
	req, err := buildSearchRequestFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Search(c.Request.Context(), principal(c), c.Param("c"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchDocuments handles POST /api/collections/{c}/search: the structured
// filter-tree dialect (§4.3, §6).
//
//	@Summary	Search documents via the structured filter tree
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		c		path	string				true	"collection"
//	@Param		body	types.SearchBody	true	"search"
//	@Success	200	{object}	types.SearchResult
//	@Router		/api/collections/{c}/search [post]
func (h *Handlers) SearchDocuments(c *gin.Context) {
	var body types.SearchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorBody{Message: "malformed request"})
		return
	}

	sortTerms, err := query.ParseSort(body.Sort)
	if err != nil {
		writeError(c, err)
		return
	}

	req := types.SearchRequest{
		Filter:      body.Filter,
		Sort:        sortTerms,
		ExtraFields: body.ExtraFields,
		Limit:       body.Limit,
		Offset:      body.Offset,
		ExactTitle:  body.ExactTitle,
	}

	result, err := h.svc.Search(c.Request.Context(), principal(c), c.Param("c"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InsertDocument handles POST /api/collections/{c} (§6).
//
//	@Summary	Insert a document
//	@Tags		documents
//	@Accept		json
//	@Param		c		path	string							true	"collection"
//	@Param		body	types.DocumentWriteRequest	true	"document"
//	@Success	201	{string}	string
//	@Failure	409	{object}	types.ErrorBody
//	@Router		/api/collections/{c} [post]
func (h *Handlers) InsertDocument(c *gin.Context) {
	var req types.DocumentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorBody{Message: "malformed request"})
		return
	}

	if err := h.svc.InsertDocument(c.Request.Context(), principal(c), c.Param("c"), req.ID, req.F); err != nil {
		writeError(c, err)
		return
	}

	c.String(http.StatusCreated, "Document saved")
}

// ReplaceDocument handles PUT /api/collections/{c} (§6).
//
//	@Summary	Replace a document
//	@Tags		documents
//	@Accept		json
//	@Param		c		path	string							true	"collection"
//	@Param		body	types.DocumentWriteRequest	true	"document"
//	@Success	200	{string}	string
//	@Router		/api/collections/{c} [put]
func (h *Handlers) ReplaceDocument(c *gin.Context) {
	var req types.DocumentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorBody{Message: "malformed request"})
		return
	}

	if err := h.svc.ReplaceDocument(c.Request.Context(), principal(c), c.Param("c"), req.ID, req.F); err != nil {
		writeError(c, err)
		return
	}

	c.String(http.StatusOK, "Document updated")
}

// GetDocument handles GET /api/collections/{c}/{id} (§6).
//
//	@Summary	Read a document and its event trail
//	@Tags		documents
//	@Produce	json
//	@Param		c	path	string	true	"collection"
//	@Param		id	path	string	true	"document id"
//	@Success	200	{object}	types.DocumentDetail
//	@Router		/api/collections/{c}/{id} [get]
func (h *Handlers) GetDocument(c *gin.Context) {
	id := c.Param("id")

	_, payload, trail, err := h.svc.ReadDocument(c.Request.Context(), principal(c), c.Param("c"), id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			c.String(http.StatusNotFound, "Document %s not found", id)
			return
		}

		writeError(c, err)

		return
	}

	events := make([]types.DocumentEventView, 0, len(trail))

	for _, ev := range trail {
		events = append(events, types.DocumentEventView{
			ID: ev.ID, Category: ev.Category, TS: ev.TS,
			Actor:     ev.Actor,
			ActorName: h.info.DisplayName(c.Request.Context(), ev.Actor),
			E:         []byte(payloadOrNull(ev.PayloadJSON)),
		})
	}

	c.JSON(http.StatusOK, types.DocumentDetail{ID: id, F: payload, E: events})
}

// Recoverables handles GET /api/recoverables/{c} (§4.3.5, §6).
//
//	@Summary	List recoverable (deleted-stage) documents
//	@Tags		documents
//	@Produce	json
//	@Param		c	path	string	true	"collection"
//	@Success	200	{object}	types.SearchResult
//	@Router		/api/recoverables/{c} [get]
func (h *Handlers) Recoverables(c *gin.Context) {
	req, err := buildSearchRequestFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Recoverables(c.Request.Context(), principal(c), c.Param("c"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RebuildGrants handles POST /api/maintenance/{c}/rebuild-grants (§4.2, §6).
//
//	@Summary	Rebuild the grant table for a collection
//	@Tags		maintenance
//	@Success	200	{string}	string
//	@Router		/api/maintenance/{c}/rebuild-grants [post]
func (h *Handlers) RebuildGrants(c *gin.Context) {
	if err := h.svc.RebuildGrants(c.Request.Context(), principal(c), c.Param("c")); err != nil {
		writeError(c, err)
		return
	}

	c.String(http.StatusOK, "Done")
}

// PostEvent handles POST /api/events (§4.5, §6).
//
//	@Summary	Post an event against a document
//	@Tags		events
//	@Accept		json
//	@Param		body	types.EventRequest	true	"event"
//	@Success	201	{string}	string
//	@Router		/api/events [post]
func (h *Handlers) PostEvent(c *gin.Context) {
	var req types.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorBody{Message: "malformed request"})
		return
	}

	if err := h.svc.PostEvent(c.Request.Context(), principal(c), req.Document, req.Category, req.E); err != nil {
		writeError(c, err)
		return
	}

	c.String(http.StatusCreated, "Done")
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return n
}

func buildSearchRequestFromQuery(c *gin.Context) (types.SearchRequest, error) {
	var filter *types.Filter

	if raw := c.Query("pfilter"); raw != "" {
		f, err := query.ParsePFilter(raw)
		if err != nil {
			return types.SearchRequest{}, apperrors.Wrap(apperrors.KindMalformed, "invalid pfilter", err)
		}

		filter = f
	}

	sortTerms, err := query.ParseSort(c.Query("sort"))
	if err != nil {
		return types.SearchRequest{}, apperrors.Wrap(apperrors.KindMalformed, "invalid sort", err)
	}

	var extraFields []string
	if raw := c.Query("extraFields"); raw != "" {
		extraFields = strings.Split(raw, ",")
	}

	return types.SearchRequest{
		Filter:      filter,
		Sort:        sortTerms,
		ExtraFields: extraFields,
		Limit:       queryInt(c, "limit", types.DefaultLimit),
		Offset:      queryInt(c, "offset", 0),
		ExactTitle:  c.Query("exactTitle"),
	}, nil
}

func payloadOrNull(raw string) string {
	if raw == "" {
		return "null"
	}

	return raw
}
