package lane

import (
	"fmt"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// Lane 车道实体
// 功能：表示裁剪后地图中的车道，包含几何信息与拓扑连接关系
type Lane struct {
	id int32

	// 初始化临时变量

	initPredecessors []*mapv2.LaneConnection
	initSuccessors   []*mapv2.LaneConnection

	typ            mapv2.LaneType   // 车道类型
	maxV           float64          // 道路限速
	parentJunction entity.IJunction // 所在路口
	parentRoad     entity.IRoad     // 所在道路
	predecessors   map[int32]entity.Connection  // 前驱车道映射表
	successors     map[int32]entity.Connection  // 后继车道映射表
	lineLengths    []float64                    // 中心线折线点对应的的长度列表
	length         float64                      // 以中心线的长度为车道长度
	width          float64                      // 车道宽度
	lineDirections []geometry.PolylineDirection // 中心线折线段每一段的方向（atan2）
	line           []geometry.Point             // 转成Point的中心线折线
}

// newLane 创建并初始化一个新的Lane实例
// 功能：根据基础数据创建Lane对象，计算中心线几何属性
// 参数：base-基础Lane数据
// 返回：初始化完成的Lane实例
// 说明：未设置限速（<=0）的车道视为不限速
func newLane(base *mapv2.Lane) *Lane {
	l := &Lane{
		id:               base.Id,
		initPredecessors: base.Predecessors,
		initSuccessors:   base.Successors,
		typ:              base.Type,
		maxV:             base.MaxSpeed,
		predecessors:     make(map[int32]entity.Connection),
		successors:       make(map[int32]entity.Connection),
		width:            base.Width,
	}
	if l.maxV <= 0 {
		l.maxV = mathutil.INF
	}
	l.line = lo.Map(base.CenterLine.GetNodes(), func(node *geov2.XYPosition, _ int) geometry.Point {
		return geometry.NewPointFromPb(node)
	})
	if len(l.line) < 2 {
		log.Panicf("lane %d: center line has %d nodes", l.id, len(l.line))
	}
	l.lineLengths = geometry.GetPolylineLengths2D(l.line)
	l.length = l.lineLengths[len(l.lineLengths)-1]
	l.lineDirections = geometry.GetPolylineDirections(l.line)
	return l
}

// initWithManager 在管理器初始化后建立Lane的连接关系
// 功能：根据初始化数据建立前驱、后继连接关系
// 参数：laneManager-车道管理器
// 说明：裁剪后地图中不存在的车道直接忽略，不视为错误
func (l *Lane) initWithManager(laneManager entity.ILaneManager) {
	for _, conn := range l.initPredecessors {
		if lane, err := laneManager.GetOrError(conn.Id); err == nil {
			l.predecessors[conn.Id] = entity.Connection{Lane: lane, Type: conn.Type}
		}
	}
	for _, conn := range l.initSuccessors {
		if lane, err := laneManager.GetOrError(conn.Id); err == nil {
			l.successors[conn.Id] = entity.Connection{Lane: lane, Type: conn.Type}
		}
	}
	l.initPredecessors = nil
	l.initSuccessors = nil
}

// 数据初始化

// SetParentRoadWhenInit 设置lane所在road
func (l *Lane) SetParentRoadWhenInit(parent entity.IRoad) {
	l.parentRoad = parent
	l.parentJunction = nil
}

// SetParentJunctionWhenInit 设置lane所在junction
func (l *Lane) SetParentJunctionWhenInit(parent entity.IJunction) {
	l.parentJunction = parent
	l.parentRoad = nil
}

// 静态数据

func (l *Lane) String() string {
	return fmt.Sprintf("Lane %d", l.id)
}

// 获取Lane ID
func (l *Lane) ID() int32 {
	if l == nil {
		return -1
	}
	return l.id
}

// 获取Lane长度
func (l *Lane) Length() float64 {
	return l.length
}

// 获取Lane宽度
func (l *Lane) Width() float64 {
	return l.width
}

// 获取Lane类型
func (l *Lane) Type() mapv2.LaneType {
	return l.typ
}

// 获取Lane的所有后继Lane与连接关系
func (l *Lane) Successors() map[int32]entity.Connection {
	return l.successors
}

// 获取Lane的所有前驱Lane与连接关系
func (l *Lane) Predecessors() map[int32]entity.Connection {
	return l.predecessors
}

// 获取Lane所在的Road
func (l *Lane) ParentRoad() entity.IRoad {
	if l.parentRoad == nil {
		return nil
	}
	return l.parentRoad
}

// 获取Lane所在的Junction
func (l *Lane) ParentJunction() entity.IJunction {
	if l.parentJunction == nil {
		return nil
	}
	return l.parentJunction
}

// 检查Lane是否为Road Lane
func (l *Lane) InRoad() bool {
	return l.parentRoad != nil
}

// 获取车道限速
func (l *Lane) MaxV() float64 {
	return l.maxV
}

// 根据本车道s坐标计算切向角度
func (l *Lane) GetDirectionByS(s float64) (direction geometry.PolylineDirection) {
	s = lo.Clamp(s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
	if i := sort.SearchFloat64s(l.lineLengths, s); i == 0 {
		direction = l.lineDirections[0]
	} else {
		direction = l.lineDirections[i-1]
	}
	return
}

// 将当前车道s坐标转换为xy(z)坐标
func (l *Lane) GetPositionByS(s float64) (pos geometry.Point) {
	if s < l.lineLengths[0] || s > l.lineLengths[len(l.lineLengths)-1] {
		log.Debugf("get position with s %v out of range{%v,%v}",
			s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
		s = lo.Clamp(s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(l.lineLengths, s); i == 0 {
		pos = l.line[0]
	} else {
		sHigh, sLow := l.lineLengths[i], l.lineLengths[i-1]
		k := (s - sLow) / (sHigh - sLow)
		pos = geometry.Blend(l.line[i-1], l.line[i], k)
	}
	return
}

// 将xyz坐标投影到车道折线上，计算出对应的s坐标
func (l *Lane) ProjectToLane(pos geometry.Point) float64 {
	s := geometry.GetClosestPolylineSToPoint2D(l.line, l.lineLengths, pos)
	return lo.Clamp(s, 0, l.length)
}
