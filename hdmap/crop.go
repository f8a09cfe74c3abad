package hdmap

import (
	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
)

// laneLineString 将车道中心线转换为orb折线
func laneLineString(l *mapv2.Lane) orb.LineString {
	nodes := l.GetCenterLine().GetNodes()
	ls := make(orb.LineString, len(nodes))
	for i, n := range nodes {
		ls[i] = orb.Point{n.X, n.Y}
	}
	return ls
}

// laneInRange 判断车道中心线是否有节点落在圆形范围内
func laneInRange(ls orb.LineString, center orb.Point, bound orb.Bound, radius float64) bool {
	if len(ls) == 0 || !ls.Bound().Intersects(bound) {
		return false
	}
	for _, p := range ls {
		if planar.Distance(p, center) <= radius {
			return true
		}
	}
	return false
}

// Crop 按中心与半径裁剪城市地图
// 功能：保留范围内的车道及其所属的完整道路与路口，并去除指向范围外的连接关系
// 参数：full-完整城市地图（不会被修改），center-裁剪中心，radius-裁剪半径
// 返回：裁剪后的地图
// 算法说明：
// 1. 用包围盒快速排除，再逐点计算距离，中心线任一节点在半径内的车道被选中
// 2. 道路或路口中有任一车道被选中时，保留该道路或路口的全部车道，保证行车道偏移量不变
// 3. 复制保留的对象，过滤车道的前驱、后继、左右车道与路口的车道组
func Crop(full *mapv2.Map, center geometry.Point, radius float64) *mapv2.Map {
	c := orb.Point{center.X, center.Y}
	bound := orb.Bound{
		Min: orb.Point{center.X - radius, center.Y - radius},
		Max: orb.Point{center.X + radius, center.Y + radius},
	}
	selected := make(map[int32]struct{})
	for _, l := range full.Lanes {
		if laneInRange(laneLineString(l), c, bound, radius) {
			selected[l.Id] = struct{}{}
		}
	}
	anySelected := func(ids []int32) bool {
		return lo.SomeBy(ids, func(id int32) bool {
			_, ok := selected[id]
			return ok
		})
	}

	kept := make(map[int32]struct{}, len(selected))
	roads := lo.Filter(full.Roads, func(r *mapv2.Road, _ int) bool {
		return anySelected(r.LaneIds)
	})
	junctions := lo.Filter(full.Junctions, func(j *mapv2.Junction, _ int) bool {
		return anySelected(j.LaneIds)
	})
	for _, r := range roads {
		for _, id := range r.LaneIds {
			kept[id] = struct{}{}
		}
	}
	for _, j := range junctions {
		for _, id := range j.LaneIds {
			kept[id] = struct{}{}
		}
	}
	for id := range selected {
		kept[id] = struct{}{}
	}
	isKept := func(id int32) bool {
		_, ok := kept[id]
		return ok
	}
	keptRoads := lo.SliceToMap(roads, func(r *mapv2.Road) (int32, struct{}) {
		return r.Id, struct{}{}
	})

	res := &mapv2.Map{Header: full.Header}
	for _, l := range full.Lanes {
		if !isKept(l.Id) {
			continue
		}
		l = proto.Clone(l).(*mapv2.Lane)
		l.Predecessors = lo.Filter(l.Predecessors, func(c *mapv2.LaneConnection, _ int) bool {
			return isKept(c.Id)
		})
		l.Successors = lo.Filter(l.Successors, func(c *mapv2.LaneConnection, _ int) bool {
			return isKept(c.Id)
		})
		l.LeftLaneIds = lo.Filter(l.LeftLaneIds, func(id int32, _ int) bool { return isKept(id) })
		l.RightLaneIds = lo.Filter(l.RightLaneIds, func(id int32, _ int) bool { return isKept(id) })
		l.Overlaps = nil
		res.Lanes = append(res.Lanes, l)
	}
	for _, r := range roads {
		r = proto.Clone(r).(*mapv2.Road)
		r.LaneIds = lo.Filter(r.LaneIds, func(id int32, _ int) bool { return isKept(id) })
		res.Roads = append(res.Roads, r)
	}
	for _, j := range junctions {
		j = proto.Clone(j).(*mapv2.Junction)
		j.LaneIds = lo.Filter(j.LaneIds, func(id int32, _ int) bool { return isKept(id) })
		j.DrivingLaneGroups = lo.Filter(j.DrivingLaneGroups, func(g *mapv2.JunctionLaneGroup, _ int) bool {
			_, in := keptRoads[g.InRoadId]
			_, out := keptRoads[g.OutRoadId]
			return in && out
		})
		res.Junctions = append(res.Junctions, j)
	}
	return res
}
