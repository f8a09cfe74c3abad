package junction

import (
	"fmt"
	"strconv"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// Junction 路口实体，对应路网中的一个节点
type Junction struct {
	id      int32
	node    entity.NodeRef
	laneIDs []int32
	lanes   map[int32]entity.ILane // 车道id->车道指针映射表
}

// newJunction 创建并初始化一个新的Junction实例
// 功能：根据基础数据创建Junction对象，设置路口内车道的父对象
// 参数：base-基础Junction数据，laneManager-车道管理器
// 返回：初始化完成的Junction实例
func newJunction(base *mapv2.Junction, laneManager entity.ILaneManager) *Junction {
	j := &Junction{
		id:      base.Id,
		node:    entity.NodeRef(strconv.Itoa(int(base.Id))),
		laneIDs: base.LaneIds,
		lanes:   make(map[int32]entity.ILane),
	}
	for _, laneID := range j.laneIDs {
		lane, err := laneManager.GetOrError(laneID)
		if err != nil {
			continue
		}
		lane.SetParentJunctionWhenInit(j)
		j.lanes[laneID] = lane
	}
	return j
}

// ID 获取Junction的唯一标识符
func (j *Junction) ID() int32 {
	if j == nil {
		return -1
	}
	return j.id
}

// Node 获取Junction对应的路网节点标识
func (j *Junction) Node() entity.NodeRef {
	return j.node
}

// Lanes 获取Junction内的所有车道
func (j *Junction) Lanes() map[int32]entity.ILane {
	return j.lanes
}

func (j *Junction) String() string {
	return fmt.Sprintf("Junction %d", j.id)
}
