package scenario

import (
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// CoordMapper 数据集坐标到仿真坐标的转换
type CoordMapper func(geometry.Point) geometry.Point

// FlipY 翻转y轴，数据集为右手系而仿真引擎为左手系
func FlipY(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X, Y: -p.Y, Z: p.Z}
}

// EpisodeConfig 一个episode的场景配置片段
// 说明：由日志记录构建，整体写入引擎配置
type EpisodeConfig struct {
	LogID          string
	Map            entity.MapConfig
	Vehicle        config.VehicleConfig
	RealData       config.RealDataConfig
	TrafficDensity float64
}

// ApplyTo 将片段写入引擎配置
// 说明：整体替换，不与上一个episode的值合并
func (c *EpisodeConfig) ApplyTo(g *config.EngineConfig) {
	g.MapConfig = c.Map
	g.VehicleConfig = c.Vehicle
	g.RealDataConfig = c.RealData
	g.TrafficDensity = c.TrafficDensity
}

// Builder 场景配置构建器
type Builder struct {
	EgoID      entity.AgentID // 自车ID
	Freq       float64        // 采样频率
	Radius     float64        // 地图裁剪半径
	FlipCenter bool           // 是否转换地图中心坐标
	Mapper     CoordMapper    // 坐标转换函数，为空时使用FlipY
}

// NewBuilder 根据运行时配置创建构建器
func NewBuilder(rc *config.RuntimeConfig) *Builder {
	return &Builder{
		EgoID:      entity.AgentID(rc.S.EgoID),
		Freq:       rc.S.Freq,
		Radius:     rc.S.Radius,
		FlipCenter: rc.FlipCenter,
		Mapper:     FlipY,
	}
}

// Build 由日志记录构建场景配置
// 功能：计算自车初速度，应用出生点覆盖，移除自车轨迹，确定地图参数
// 参数：record-日志记录（不会被修改），override-出生点覆盖（可为nil）
// 返回：场景配置片段
// 算法说明：
// 1. 取出自车轨迹，不存在则返回ErrMissingEgoTrack
// 2. 由前两个采样点估计初速度
// 3. 出生车道与目的地取覆盖值，无覆盖时取记录值
// 4. 复制背景轨迹并移除自车，规则交通流密度置0，车辆全部来自回放
// 5. 开启FlipCenter时地图中心取Mapper((cx, -cy))
func (b *Builder) Build(record *entity.LogRecord, override *SpawnOverride) (*EpisodeConfig, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil record", ErrCorruptRecord)
	}
	ego, ok := record.LocateInfo[b.EgoID]
	if !ok || ego == nil {
		return nil, fmt.Errorf("%w: %s has no track of %s", ErrMissingEgoTrack, record.ID, b.EgoID)
	}
	speed, err := InitialSpeed(ego, b.Freq)
	if err != nil {
		return nil, fmt.Errorf("ego of %s: %w", record.ID, err)
	}
	spawn, target := record.EgoSpawnLane, record.EgoTargetNode
	if override != nil {
		spawn, target = override.SpawnLane, override.TargetNode
	}
	if spawn.From == "" || spawn.To == "" || target == "" {
		return nil, errors.Join(ErrCorruptRecord, fmt.Errorf("%s: empty spawn lane %v or destination %q", record.ID, spawn, target))
	}
	locate := record.LocateInfo.Clone()
	delete(locate, b.EgoID)

	center := record.MapCenter
	if b.FlipCenter {
		mapper := b.Mapper
		if mapper == nil {
			mapper = FlipY
		}
		center = mapper(geometry.Point{X: center.X, Y: -center.Y})
	}
	return &EpisodeConfig{
		LogID: record.ID,
		Map: entity.MapConfig{
			City:   record.City,
			Center: center,
			Radius: b.Radius,
		},
		Vehicle: config.VehicleConfig{
			SpawnLaneIndex:  spawn,
			DestinationNode: target,
			AgentInitPos:    ego.InitPos,
			AgentInitSpeed:  speed,
		},
		RealData: config.RealDataConfig{
			LocateInfo: locate,
		},
		TrafficDensity: 0,
	}, nil
}
