package junction

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// Junction管理器
type JunctionManager struct {
	data      map[int32]*Junction
	byNode    map[entity.NodeRef]*Junction
	junctions []*Junction
}

// NewManager 创建Junction管理器实例
func NewManager() *JunctionManager {
	return &JunctionManager{
		data:      make(map[int32]*Junction),
		byNode:    make(map[entity.NodeRef]*Junction),
		junctions: make([]*Junction, 0),
	}
}

// Init 初始化所有Junction
// 功能：根据protobuf数据初始化所有Junction对象，建立ID与节点映射关系
// 参数：pbs-Junction的protobuf数据列表，laneManager-车道管理器
// 说明：没有任何车道留在裁剪范围内的Junction被丢弃
func (m *JunctionManager) Init(pbs []*mapv2.Junction, laneManager entity.ILaneManager) {
	junctions := parallel.GoMap(pbs, func(pb *mapv2.Junction) *Junction {
		return newJunction(pb, laneManager)
	})
	m.junctions = lo.Filter(junctions, func(j *Junction, _ int) bool {
		return len(j.lanes) > 0
	})
	m.data = lo.SliceToMap(m.junctions, func(j *Junction) (int32, *Junction) {
		return j.id, j
	})
	m.byNode = lo.SliceToMap(m.junctions, func(j *Junction) (entity.NodeRef, *Junction) {
		return j.node, j
	})
}

// Get 根据ID获取Junction实例，如果不存在则panic
func (m *JunctionManager) Get(id int32) entity.IJunction {
	if junction, ok := m.data[id]; !ok {
		log.Panicf("no id %d in junction data", id)
		return nil
	} else {
		return junction
	}
}

// GetOrError 根据ID获取Junction实例，如果不存在则返回错误
func (m *JunctionManager) GetOrError(id int32) (entity.IJunction, error) {
	if junction, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in junction data", id)
	} else {
		return junction, nil
	}
}

// GetByNode 根据节点标识获取Junction实例
func (m *JunctionManager) GetByNode(node entity.NodeRef) (entity.IJunction, error) {
	if junction, ok := m.byNode[node]; !ok {
		return nil, fmt.Errorf("no node %s in junction data", node)
	} else {
		return junction, nil
	}
}

// Len Junction数量
func (m *JunctionManager) Len() int {
	return len(m.junctions)
}
