package model

// Grant is a materialized (document, user, reader) row that optimizes
// visibility queries for OAO collections. It is always a conservative
// superset of actual visibility — the authorizer, not this table, is
// authoritative (see pkg/internal/authz).
type Grant struct {
	DocumentID string `gorm:"primaryKey;size:36"                       json:"documentId"`
	UserID     string `gorm:"primaryKey;size:36;index:idx_grant_user"  json:"userId"`
	Relation   string `gorm:"size:16;not null;default:'reader'"        json:"relation"`
}

func (Grant) TableName() string { return "grants" }
