package config

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// 场景模式
const (
	ModeSingle         = "single"
	ModeMulti          = "multi"
	ModeGeneralization = "generalization"
)

// 默认值，固定单场景取自Argoverse数据集PIT城市的一条日志
const (
	DefaultEgoID     = "AGENT"
	DefaultFreq      = 10.
	DefaultRadius    = 300.
	DefaultPartition = "test"

	DefaultSingleLogID       = "c6911883-1843-3727-8eaa-41dc8cda8993"
	DefaultSingleCity        = "PIT"
	DefaultSingleDestination = entity.NodeRef("968")
)

var (
	DefaultSingleCenter    = []float64{2599.5505965123866, 1200.0214763629717}
	DefaultSingleSpawnLane = entity.LaneRef{From: "7903", To: "9713", Index: 0}
)

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并校验后的配置
type RuntimeConfig struct {
	All Config   // 全部配置
	C   Control  // 全局控制配置
	S   Scenario // 场景加载配置（已补全默认值）

	FlipCenter   bool           // 是否对地图中心做坐标系转换
	SingleCenter geometry.Point // 单场景模式的地图中心
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值并校验配置
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回错误
// 算法说明：
// 1. 补全场景模式、自车ID、采样频率、裁剪半径、分区等默认值
// 2. 单场景模式补全固定场景参数
// 3. 校验模式、种子范围与时间步长
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}
	rc.All = config
	rc.C = config.Control
	s := config.Scenario

	if s.Mode == "" {
		s.Mode = ModeGeneralization
	}
	if s.EgoID == "" {
		s.EgoID = DefaultEgoID
	}
	if s.Freq == 0 {
		s.Freq = DefaultFreq
	}
	if s.Radius == 0 {
		s.Radius = DefaultRadius
	}
	if s.Partition == "" {
		s.Partition = DefaultPartition
	}
	switch s.Mode {
	case ModeSingle:
		if s.Single.LogID == "" {
			s.Single.LogID = DefaultSingleLogID
		}
		if s.Single.City == "" {
			s.Single.City = DefaultSingleCity
		}
		if len(s.Single.Center) == 0 {
			s.Single.Center = DefaultSingleCenter
		}
		if s.Single.SpawnLane == (entity.LaneRef{}) {
			s.Single.SpawnLane = DefaultSingleSpawnLane
		}
		if s.Single.Destination == "" {
			s.Single.Destination = DefaultSingleDestination
		}
		if len(s.Single.Center) != 2 {
			return nil, fmt.Errorf("scenario.single.center must have 2 values, got %d", len(s.Single.Center))
		}
		rc.SingleCenter = geometry.Point{X: s.Single.Center[0], Y: s.Single.Center[1]}
	case ModeMulti, ModeGeneralization:
	default:
		return nil, fmt.Errorf("unknown scenario mode %q", s.Mode)
	}
	if s.StartSeed < 0 || s.EpisodeNum < 0 {
		return nil, fmt.Errorf("start_seed (%d) and episode_num (%d) must be non-negative", s.StartSeed, s.EpisodeNum)
	}
	if s.Freq < 0 || s.Radius < 0 {
		return nil, fmt.Errorf("freq (%v) and radius (%v) must be positive", s.Freq, s.Radius)
	}
	if s.FlipCenter != nil {
		rc.FlipCenter = *s.FlipCenter
	} else {
		rc.FlipCenter = s.Mode == ModeGeneralization
	}
	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = 1 / s.Freq
	}
	rc.S = s
	return rc, nil
}
