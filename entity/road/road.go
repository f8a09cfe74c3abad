package road

import (
	"fmt"
	"slices"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// Road 道路实体
// 功能：表示地图中的道路，包含车道集合与前驱后继路口
type Road struct {
	id           int32
	laneIDs      []int32
	drivingLanes []entity.ILane         // 行车道，按从左到右排序
	lanes        map[int32]entity.ILane // 车道id->车道指针映射表

	drivingPredecessor entity.IJunction // 前驱路口
	drivingSuccessor   entity.IJunction // 后继路口
}

// newRoad 创建并初始化一个新的Road实例
// 功能：根据基础数据创建Road对象，按车道类型分出行车道
// 参数：base-基础Road数据，laneManager-车道管理器
// 返回：初始化完成的Road实例
// 说明：裁剪后地图中不存在的车道被跳过，行车道按从左到右的顺序排列
func newRoad(base *mapv2.Road, laneManager entity.ILaneManager) *Road {
	r := &Road{
		id:      base.Id,
		laneIDs: base.LaneIds,
		lanes:   make(map[int32]entity.ILane),
	}
	for _, laneID := range r.laneIDs {
		lane, err := laneManager.GetOrError(laneID)
		if err != nil {
			continue
		}
		r.lanes[laneID] = lane
		lane.SetParentRoadWhenInit(r)
		if lane.Type() == mapv2.LaneType_LANE_TYPE_DRIVING {
			r.drivingLanes = append(r.drivingLanes, lane)
		}
	}
	return r
}

// initAfterJunction 在Junction初始化后设置Road的路口连接关系
// 功能：根据车道的连接关系确定Road的前驱和后继路口
// 说明：按车道ID顺序遍历以保证结果确定；路口不唯一时保留第一个并告警
func (r *Road) initAfterJunction() {
	for _, lane := range r.drivingLanes {
		pres := lane.Predecessors()
		preIDs := lo.Keys(pres)
		slices.Sort(preIDs)
		for _, id := range preIDs {
			junc := pres[id].Lane.ParentJunction()
			if junc == nil {
				continue
			}
			if r.drivingPredecessor == nil {
				r.drivingPredecessor = junc
			} else if r.drivingPredecessor.ID() != junc.ID() {
				log.Warnf("Road %d's predecessor is not unique: %d v.s. %d", r.id, r.drivingPredecessor.ID(), junc.ID())
			}
		}
		sucs := lane.Successors()
		sucIDs := lo.Keys(sucs)
		slices.Sort(sucIDs)
		for _, id := range sucIDs {
			junc := sucs[id].Lane.ParentJunction()
			if junc == nil {
				continue
			}
			if r.drivingSuccessor == nil {
				r.drivingSuccessor = junc
			} else if r.drivingSuccessor.ID() != junc.ID() {
				log.Warnf("Road %d's successor is not unique: %d v.s. %d", r.id, r.drivingSuccessor.ID(), junc.ID())
			}
		}
	}
}

// nodes 获取道路两端的节点标识，缺失的一端为空串
func (r *Road) nodes() (from, to entity.NodeRef) {
	if r.drivingPredecessor != nil {
		from = r.drivingPredecessor.Node()
	}
	if r.drivingSuccessor != nil {
		to = r.drivingSuccessor.Node()
	}
	return
}

// ID 获取Road的唯一标识符，如果Road为nil则返回-1
func (r *Road) ID() int32 {
	if r == nil {
		return -1
	}
	return r.id
}

func (r *Road) String() string {
	return fmt.Sprintf("Road %d", r.id)
}

// RightestDrivingLane 获取最右侧的行车道，无行车道时返回nil
func (r *Road) RightestDrivingLane() entity.ILane {
	if len(r.drivingLanes) == 0 {
		return nil
	}
	return r.drivingLanes[len(r.drivingLanes)-1]
}

// DrivingSuccessor 获取后继Junction
func (r *Road) DrivingSuccessor() entity.IJunction {
	return r.drivingSuccessor
}
