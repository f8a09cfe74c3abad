package road

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"

	"github.com/samber/lo"
)

// nodePair 道路两端节点，用于车道标识查找
type nodePair struct {
	from entity.NodeRef
	to   entity.NodeRef
}

// RoadManager Road管理器
// 功能：管理所有Road实体，提供创建、查找与车道标识解析功能
type RoadManager struct {
	data  map[int32]*Road
	roads []*Road

	byNodes map[nodePair]*Road
}

// NewManager 创建Road管理器实例
func NewManager() *RoadManager {
	return &RoadManager{
		data:    make(map[int32]*Road),
		roads:   make([]*Road, 0),
		byNodes: make(map[nodePair]*Road),
	}
}

// Init 初始化所有Road
// 功能：根据protobuf数据初始化所有Road对象，建立ID映射关系
// 参数：pbs-Road的protobuf数据列表，laneManager-车道管理器
// 说明：没有任何车道留在裁剪范围内的Road被丢弃
func (m *RoadManager) Init(pbs []*mapv2.Road, laneManager entity.ILaneManager) {
	roads := parallel.GoMap(pbs, func(pb *mapv2.Road) *Road {
		return newRoad(pb, laneManager)
	})
	m.roads = lo.Filter(roads, func(r *Road, _ int) bool {
		return len(r.lanes) > 0
	})
	m.data = lo.SliceToMap(m.roads, func(r *Road) (int32, *Road) {
		return r.id, r
	})
}

// InitAfterJunction 初始化所有Road的Junction关系并建立节点索引
// 功能：在所有Junction初始化完成后，设置Road的前驱和后继路口，
// 并以(前驱节点, 后继节点)为键索引道路
// 说明：同一节点对对应多条道路时保留ID最小者
func (m *RoadManager) InitAfterJunction(_ entity.IJunctionManager) {
	parallel.GoFor(m.roads, func(r *Road) { r.initAfterJunction() })
	for _, r := range m.roads {
		from, to := r.nodes()
		if from == "" || to == "" {
			continue
		}
		key := nodePair{from: from, to: to}
		if old, ok := m.byNodes[key]; ok {
			log.Warnf("roads %d and %d share nodes (%s, %s)", old.id, r.id, from, to)
			if old.id < r.id {
				continue
			}
		}
		m.byNodes[key] = r
	}
}

// Get 根据ID获取Road实例，如果不存在则panic
func (m *RoadManager) Get(id int32) entity.IRoad {
	if road, ok := m.data[id]; !ok {
		log.Panicf("no id %d in road data", id)
		return nil
	} else {
		return road
	}
}

// GetOrError 根据ID获取Road实例，如果不存在则返回错误
func (m *RoadManager) GetOrError(id int32) (entity.IRoad, error) {
	if road, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in road data", id)
	} else {
		return road, nil
	}
}

// GetLane 根据车道标识获取行车道
// 功能：先按(起点, 终点)找到道路，再按序号取行车道
// 参数：ref-车道标识
// 返回：行车道，找不到道路或序号越界时返回错误
func (m *RoadManager) GetLane(ref entity.LaneRef) (entity.ILane, error) {
	r, ok := m.byNodes[nodePair{from: ref.From, to: ref.To}]
	if !ok {
		return nil, fmt.Errorf("no road from node %s to node %s", ref.From, ref.To)
	}
	if ref.Index < 0 || int(ref.Index) >= len(r.drivingLanes) {
		return nil, fmt.Errorf("lane index %d out of range [0, %d) in road %d", ref.Index, len(r.drivingLanes), r.id)
	}
	return r.drivingLanes[ref.Index], nil
}

// Len Road数量
func (m *RoadManager) Len() int {
	return len(m.roads)
}
