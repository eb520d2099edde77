package model

import "time"

// Collection 表示一个文档集合：共享可见性策略（OAO 或公开）和角色命名空间的命名容器.
type Collection struct {
	Name   string `gorm:"primaryKey;size:32"           json:"name"`
	Title  string `gorm:"size:150;not null"            json:"title"`
	OAO    bool   `gorm:"not null"                     json:"oao"`
	Locked bool   `gorm:"not null;default:false"       json:"locked"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 固定表名，避免 GORM 复数化规则改变既有 schema.
func (Collection) TableName() string { return "collections" }
