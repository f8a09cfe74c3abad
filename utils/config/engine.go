package config

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// DefaultTrafficDensity 引擎默认的规则交通流密度
const DefaultTrafficDensity = 0.1

// VehicleConfig 自车配置
type VehicleConfig struct {
	SpawnLaneIndex  entity.LaneRef // 出生车道
	DestinationNode entity.NodeRef // 目的地节点
	AgentInitPos    geometry.Point // 初始位置
	AgentInitSpeed  geometry.Point // 初始速度（向量）
}

// RealDataConfig 真实数据回放配置
type RealDataConfig struct {
	LocateInfo entity.LocateInfo // 背景车辆轨迹（不含自车）
}

// EngineConfig 仿真引擎的全局可变配置
// 说明：场景加载模块只向其中写入，每个episode整体替换场景相关字段
type EngineConfig struct {
	MapConfig      entity.MapConfig
	VehicleConfig  VehicleConfig
	RealDataConfig RealDataConfig
	TrafficDensity float64
}

// NewEngineConfig 创建带默认值的引擎配置
func NewEngineConfig() *EngineConfig {
	return &EngineConfig{
		TrafficDensity: DefaultTrafficDensity,
	}
}
