package model

import "time"

// Fixed category numbers, part of the wire contract.
const (
	CategoryAudit       = 1   // ownership/audit, written implicitly
	CategoryDelete      = 2   // delete request
	CategoryRecover     = 3   // recover request
	CategoryMailReceipt = 100 // mail worker's delivery outcome marker
	CategoryLifecycle   = 102 // application-defined lifecycle marker
)

// Event is an append-only, categorized, timestamped record on a Document.
// Ids are assigned globally monotonically increasing (auto-increment primary
// key); this satisfies the per-document ordering guarantee the payload
// contract requires without needing a per-document counter table.
type Event struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"               json:"id"`
	DocumentID string `gorm:"size:36;not null;index:idx_event_doc"   json:"-"`
	Category   int    `gorm:"not null"                               json:"category"`
	PayloadJSON string `gorm:"type:text" json:"-"`
	TS         time.Time `gorm:"index:idx_event_ts" json:"ts"`
	Actor      string    `gorm:"size:36;not null"    json:"actor"`
}

func (Event) TableName() string { return "events" }
