package model

import (
	"time"
)

// Stage is a document's position in the two-stage deletion state machine.
type Stage string

const (
	StageActive        Stage = "active"
	StageDeletedStage1 Stage = "deleted_stage1"
	StageDeletedStage2 Stage = "deleted_stage2"
)

// Document 是一条不透明的 JSON payload 加元数据（id、owner、stage、created_at、title）
// 以及一条只增事件轨迹. id 在所有 collection 间全局唯一——它是表的主键，collection
// 只是一个限定字段，绝不是复合键的一部分，这样跨 collection 的 id 碰撞在写入时就会被
// 唯一约束挡住.
type Document struct {
	ID         string `gorm:"primaryKey;size:36"                          json:"id"`
	Collection string `gorm:"size:32;not null;index:idx_doc_collection"   json:"collection"`
	OwnerID    string `gorm:"size:36;not null;index:idx_doc_owner"        json:"ownerId"`

	// Title 从 payload 的 title 字段派生，大小写保留存储；TitleLower 存其小写形式并建索引.
	// exactTitle 过滤不查询该列，而是在内存中用 strings.EqualFold 比较 Title.
	Title      string `gorm:"size:512;index:idx_doc_title"        json:"title"`
	TitleLower string `gorm:"size:512;index:idx_doc_title_lower"  json:"-"`

	// PayloadJSON 以文本列存储规范化 JSON，避免在每次请求时重新解析；marshal/unmarshal
	// 只发生在载荷跨越 store 边界的地方.
	PayloadJSON string `gorm:"type:text" json:"-"`

	Stage            Stage      `gorm:"size:20;not null;index:idx_doc_stage" json:"stage"`
	DeletionDeadline *time.Time `json:"deletionDeadline,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_doc_created" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Document) TableName() string { return "documents" }
