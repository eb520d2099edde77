// Package storage aggregates the resources the document engine needs at
// runtime: the relational store and the KV cache. Object storage and a
// message broker are not part of this aggregate (see DESIGN.md).
//
// Example:
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	"github.com/foliva/docengine/pkg/configs"
	dbc "github.com/foliva/docengine/pkg/internal/storage/db"
	kvc "github.com/foliva/docengine/pkg/internal/storage/kv"
	nlog "github.com/foliva/docengine/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB *dbc.Client
	KV *kvc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		m := &Manager{}

		dbi, e := dbc.New(ctx)
		if e != nil {
			err = e
			return
		}

		m.DB = dbi

		if kvi, e := kvc.NewKVClient(ctx); e != nil {
			nlog.Logger().Warn().Err(e).Msg("kv client unavailable, caching disabled")
		} else {
			m.KV = kvi
		}

		if e := dbc.AutoMigrate(m.DB); e != nil {
			err = e
			return
		}

		cfg := configs.GetConfig()
		if e := dbc.EnsureSystemCollections(ctx, m.DB, cfg.Deletion); e != nil {
			err = e
			return
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client { return m.DB }

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client { return m.KV }
