package types

import (
	"encoding/json"
	"time"
)

// CreateCollectionRequest is the body of POST /api/collections (§6).
type CreateCollectionRequest struct {
	Name  string `json:"name"  binding:"required"`
	Title string `json:"title" binding:"required"`
	OAO   bool   `json:"oao"`
}

// DocumentWriteRequest is the body of POST/PUT /api/collections/{c}: an id
// plus the opaque payload (§6).
type DocumentWriteRequest struct {
	ID string         `json:"id" binding:"required"`
	F  map[string]any `json:"f"`
}

// EventRequest is the body of POST /api/events (§6).
type EventRequest struct {
	Category   int            `json:"category"`
	Collection string         `json:"collection" binding:"required"`
	Document   string         `json:"document"   binding:"required"`
	E          map[string]any `json:"e"`
}

// SearchBody is the body of POST /api/collections/{c}/search: the filter
// tree plus the same sort/pagination/projection knobs the GET list
// endpoint takes as query parameters (§4.3, §6).
type SearchBody struct {
	Filter      *Filter  `json:"filter"`
	Sort        string   `json:"sort"`
	ExtraFields []string `json:"extraFields"`
	Limit       int      `json:"limit"`
	Offset      int      `json:"offset"`
	ExactTitle  string   `json:"exactTitle"`
}

// CollectionView is the response shape for one collection (§6).
type CollectionView struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	OAO       bool      `json:"oao"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CollectionsList is the response of GET /api/collections (§6).
type CollectionsList struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int64            `json:"total"`
	Items  []CollectionView `json:"items"`
}

// DocumentEventView is one entry of a document's event trail (§4.5, §6).
// ActorName is a best-effort USERDATA_* enrichment of Actor; it falls back
// to the bare actor id whenever the lookup is disabled or fails (§9).
type DocumentEventView struct {
	ID        int64           `json:"id,omitempty"`
	Category  int             `json:"category"`
	TS        time.Time       `json:"ts"`
	Actor     string          `json:"actor"`
	ActorName string          `json:"actorName,omitempty"`
	E         json.RawMessage `json:"e,omitempty"`
}

// DocumentDetail is the response of GET /api/collections/{c}/{id} (§6).
type DocumentDetail struct {
	ID string              `json:"id"`
	F  map[string]any      `json:"f"`
	E  []DocumentEventView `json:"e"`
}

// ErrorBody is the structured error envelope used for every non-text
// error response (§6, §7).
type ErrorBody struct {
	Message string `json:"message"`
}
