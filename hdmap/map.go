package hdmap

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity/junction"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity/lane"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity/road"
)

// Map 裁剪后的高精地图实例
// 说明：构建完成后只读，可在多个episode间复用
type Map struct {
	cfg entity.MapConfig
	pb  *mapv2.Map

	laneManager     *lane.LaneManager
	roadManager     *road.RoadManager
	junctionManager *junction.JunctionManager
}

// NewMap 由地图数据构建地图实例
// 功能：依次初始化车道、道路、路口，最后建立道路与路口的关系
// 参数：cfg-构建参数，pb-（裁剪后的）地图数据
// 返回：地图实例
func NewMap(cfg entity.MapConfig, pb *mapv2.Map) *Map {
	m := &Map{
		cfg:             cfg,
		pb:              pb,
		laneManager:     lane.NewManager(),
		roadManager:     road.NewManager(),
		junctionManager: junction.NewManager(),
	}
	m.laneManager.Init(pb.Lanes)
	m.roadManager.Init(pb.Roads, m.laneManager)
	m.junctionManager.Init(pb.Junctions, m.laneManager)
	m.roadManager.InitAfterJunction(m.junctionManager)
	return m
}

func (m *Map) Config() entity.MapConfig {
	return m.cfg
}

func (m *Map) LaneManager() entity.ILaneManager {
	return m.laneManager
}

func (m *Map) RoadManager() entity.IRoadManager {
	return m.roadManager
}

func (m *Map) JunctionManager() entity.IJunctionManager {
	return m.junctionManager
}

// Lane 根据车道标识查找行车道
func (m *Map) Lane(ref entity.LaneRef) (entity.ILane, error) {
	return m.roadManager.GetLane(ref)
}

// Junction 根据节点标识查找路口
func (m *Map) Junction(node entity.NodeRef) (entity.IJunction, error) {
	return m.junctionManager.GetByNode(node)
}

func (m *Map) Pb() *mapv2.Map {
	return m.pb
}
