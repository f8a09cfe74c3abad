package scenario

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// Manager 场景加载管理器
// 功能：串联日志选择、记录加载、配置构建与地图缓存，每个episode重置一次
// 说明：地图缓存由Manager实例持有，不同实例之间互不影响
type Manager struct {
	mode      string
	store     Store
	overrides OverrideSource
	builder   *Builder
	cache     *MapCache
	selector  *Selector
	single    config.SingleScenario
	singleCtr entity.MapConfig

	seedStart, seedNum int

	currentID string
	current   *EpisodeConfig
}

// NewManager 创建场景加载管理器
// 功能：列出候选日志，剔除显式排除的日志，按模式确定候选列表与种子范围
// 参数：ctx-上下文，rc-运行时配置，store-日志存储，overrides-出生点覆盖（可为nil），mapBuilder-地图构建器
// 返回：管理器，列出日志失败或候选为空时返回错误
// 算法说明：
// 1. single模式不列目录，候选只有固定日志，不读取出生点覆盖
// 2. multi模式保持存储枚举顺序，取窗口[start_seed, start_seed+episode_num)，种子在窗口内从0计
// 3. generalization模式按字典序排序，种子直接索引完整列表，默认范围[start_seed, start_seed+episode_num)
func NewManager(
	ctx context.Context, rc *config.RuntimeConfig,
	store Store, overrides OverrideSource, mapBuilder MapBuilder,
) (*Manager, error) {
	if overrides == nil {
		overrides = NoOverrides{}
	}
	s := rc.S
	m := &Manager{
		mode:      s.Mode,
		store:     store,
		overrides: overrides,
		builder:   NewBuilder(rc),
		cache:     NewMapCache(mapBuilder),
		single:    s.Single,
		singleCtr: entity.MapConfig{City: s.Single.City, Center: rc.SingleCenter, Radius: s.Radius},
	}
	if s.Mode == config.ModeSingle {
		// 单场景的出生点与目的地只由配置给出
		m.overrides = NoOverrides{}
		m.selector = NewSelector(s.Mode, nil, s.Single.LogID)
		m.seedStart, m.seedNum = 0, 1
		return m, nil
	}

	order := OrderSorted
	if s.Mode == config.ModeMulti {
		order = OrderNative
	}
	ids, err := store.ListIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	ids = excludeIDs(ids, s.Exclude)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no log records available for mode %s", s.Mode)
	}
	num := s.EpisodeNum
	if num == 0 || s.StartSeed+num > len(ids) {
		num = len(ids) - s.StartSeed
	}
	if num <= 0 {
		return nil, fmt.Errorf("%w: start_seed %d with %d records", ErrSeedOutOfRange, s.StartSeed, len(ids))
	}
	switch s.Mode {
	case config.ModeMulti:
		ids = ids[s.StartSeed : s.StartSeed+num]
		m.seedStart, m.seedNum = 0, num
	case config.ModeGeneralization:
		m.seedStart, m.seedNum = s.StartSeed, num
	}
	m.selector = NewSelector(s.Mode, ids, "")
	log.Infof("%d log records in %s mode, seeds [%d, %d)", len(ids), s.Mode, m.seedStart, m.seedStart+m.seedNum)
	return m, nil
}

// excludeIDs 剔除显式排除的日志，保持原有顺序
func excludeIDs(ids []string, exclude []string) []string {
	if len(exclude) == 0 {
		return ids
	}
	set := lo.SliceToMap(exclude, func(id string) (string, struct{}) {
		return id, struct{}{}
	})
	return lo.Filter(ids, func(id string, _ int) bool {
		if _, ok := set[id]; ok {
			log.Warnf("exclude log record %s by configuration", id)
			return false
		}
		return true
	})
}

// Reset 为新的episode加载场景
// 功能：选择日志、加载记录、应用覆盖、构建配置并整体写入引擎配置
// 参数：ctx-上下文，seed-种子，g-引擎配置（被整体替换场景相关字段）
// 返回：选中的日志ID与配置片段，任一步失败时不修改g
func (m *Manager) Reset(ctx context.Context, seed int, g *config.EngineConfig) (*EpisodeConfig, error) {
	cfg, err := m.reset(ctx, seed)
	if err != nil {
		episodeResets.WithLabelValues(m.mode, "error").Inc()
		return nil, err
	}
	episodeResets.WithLabelValues(m.mode, "ok").Inc()
	cfg.ApplyTo(g)
	m.currentID, m.current = cfg.LogID, cfg
	log.Infof("seed %d: log %s, map %s, %d background agents",
		seed, cfg.LogID, MapKey(cfg.Map.Center), len(cfg.RealData.LocateInfo))
	return cfg, nil
}

func (m *Manager) reset(ctx context.Context, seed int) (*EpisodeConfig, error) {
	id, err := m.selector.Select(seed)
	if err != nil {
		return nil, err
	}
	record, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.mode == config.ModeSingle {
		record.City = m.singleCtr.City
		record.MapCenter = m.singleCtr.Center
		record.EgoSpawnLane = m.single.SpawnLane
		record.EgoTargetNode = m.single.Destination
	}
	override, err := m.overrides.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if override != nil {
		log.Debugf("override spawn of %s: %v -> %s", id, override.SpawnLane, override.TargetNode)
	}
	return m.builder.Build(record, override)
}

// LoadMap 获取引擎配置中地图参数对应的地图
func (m *Manager) LoadMap(g *config.EngineConfig) (entity.IMap, error) {
	return m.cache.GetOrBuild(g.MapConfig)
}

// Cache 地图缓存
func (m *Manager) Cache() *MapCache {
	return m.cache
}

// IDs 候选日志ID
func (m *Manager) IDs() []string {
	return m.selector.IDs()
}

// SeedRange 有效种子范围[start, start+num)
func (m *Manager) SeedRange() (start, num int) {
	return m.seedStart, m.seedNum
}

// Current 当前episode的日志ID与配置
func (m *Manager) Current() (string, *EpisodeConfig) {
	return m.currentID, m.current
}
