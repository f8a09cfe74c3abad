package route

import (
	"fmt"
	"slices"

	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	"git.fiblab.net/sim/routing/v2/router"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// LocalRouter 本地导航服务
// 说明：每张裁剪后的地图对应一个实例
type LocalRouter struct {
	m      entity.IMap
	router *router.Router
}

// NewLocalRouter 基于地图实例创建本地导航服务
func NewLocalRouter(m entity.IMap) *LocalRouter {
	return &LocalRouter{
		m:      m,
		router: router.New(m.Pb(), nil),
	}
}

// destinationLane 找到驶入目的地路口的道路上最右侧的行车道
// 说明：按路口内车道ID顺序查找前驱道路，保证结果确定
func destinationLane(junc entity.IJunction) (entity.ILane, error) {
	lanes := junc.Lanes()
	ids := lo.Keys(lanes)
	slices.Sort(ids)
	for _, id := range ids {
		pres := lanes[id].Predecessors()
		preIDs := lo.Keys(pres)
		slices.Sort(preIDs)
		for _, preID := range preIDs {
			pre := pres[preID].Lane
			if !pre.InRoad() {
				continue
			}
			road := pre.ParentRoad()
			if suc := road.DrivingSuccessor(); suc == nil || suc.ID() != junc.ID() {
				continue
			}
			if l := road.RightestDrivingLane(); l != nil {
				return l, nil
			}
		}
	}
	return nil, fmt.Errorf("no road enters junction %d", junc.ID())
}

// PlanEgo 规划自车从出生车道到目的地节点的道路序列
// 功能：解析车道标识与节点标识，调用驾车路径搜索
// 参数：spawn-出生车道标识，dest-目的地节点，t-出发时间
// 返回：道路ID序列，车道或路口不在地图中、无可达路径时返回错误
func (l *LocalRouter) PlanEgo(spawn entity.LaneRef, dest entity.NodeRef, t float64) ([]int32, error) {
	start, err := l.m.Lane(spawn)
	if err != nil {
		return nil, fmt.Errorf("spawn lane %v: %w", spawn, err)
	}
	junc, err := l.m.Junction(dest)
	if err != nil {
		return nil, fmt.Errorf("destination %s: %w", dest, err)
	}
	// 出生道路直接驶入目的地路口
	if suc := start.ParentRoad().DrivingSuccessor(); suc != nil && suc.ID() == junc.ID() {
		return []int32{start.ParentRoad().ID()}, nil
	}
	end, err := destinationLane(junc)
	if err != nil {
		return nil, err
	}
	roadIDs, cost, err := l.router.SearchDriving(
		&geov2.Position{LanePosition: &geov2.LanePosition{LaneId: start.ID(), S: 0}},
		&geov2.Position{LanePosition: &geov2.LanePosition{LaneId: end.ID(), S: end.Length()}},
		t,
	)
	if err != nil {
		return nil, fmt.Errorf("search driving from %v to %s: %w", spawn, dest, err)
	}
	log.Debugf("ego route %v -> %s: %d roads, eta %.1fs", spawn, dest, len(roadIDs), cost)
	return roadIDs, nil
}
