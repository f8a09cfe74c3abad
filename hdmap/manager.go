package hdmap

import (
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// Loader 按引擎配置获取地图
type Loader interface {
	LoadMap(g *config.EngineConfig) (entity.IMap, error)
}

// Manager 引擎当前使用的地图
// 说明：每个episode开始时若没有当前地图则加载，结束时卸载；
// 卸载只解除引用，地图实例仍保留在缓存中
type Manager struct {
	loader  Loader
	current entity.IMap
}

// NewManager 创建地图管理器
func NewManager(loader Loader) *Manager {
	return &Manager{loader: loader}
}

// Reset 为新episode准备地图
// 功能：没有当前地图时按引擎配置加载，已有地图时保持不变
func (m *Manager) Reset(g *config.EngineConfig) (entity.IMap, error) {
	if m.current != nil {
		log.Warn("already have current map")
		return m.current, nil
	}
	mp, err := m.loader.LoadMap(g)
	if err != nil {
		return nil, err
	}
	m.current = mp
	return mp, nil
}

// Unload 卸载当前地图
func (m *Manager) Unload() {
	m.current = nil
}

// Current 当前地图，未加载时为nil
func (m *Manager) Current() entity.IMap {
	return m.current
}
