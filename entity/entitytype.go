package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// NodeRef 路网节点标识（即路口ID的字符串形式）
type NodeRef string

// LaneRef 车道标识，由(起点节点, 终点节点, 车道序号)组成
// 说明：序号为车道在道路行车道中从左到右的偏移量
type LaneRef struct {
	From  NodeRef `yaml:"from"`
	To    NodeRef `yaml:"to"`
	Index int32   `yaml:"index"`
}

func (r LaneRef) String() string {
	return fmt.Sprintf("('%s', '%s', %d)", r.From, r.To, r.Index)
}

// AgentID 日志中的智能体ID
type AgentID string

// Sample 轨迹采样点
type Sample struct {
	T   float64        // 时间戳（秒）
	Pos geometry.Point // 位置
}

// AgentTrack 单个智能体的记录轨迹
// 说明：Traj按时间戳升序排列
type AgentTrack struct {
	InitPos geometry.Point
	Traj    []Sample
}

// Clone 深拷贝轨迹
func (t *AgentTrack) Clone() *AgentTrack {
	if t == nil {
		return nil
	}
	traj := make([]Sample, len(t.Traj))
	copy(traj, t.Traj)
	return &AgentTrack{InitPos: t.InitPos, Traj: traj}
}

// LocateInfo 智能体ID到轨迹的映射
type LocateInfo map[AgentID]*AgentTrack

// Clone 深拷贝
func (li LocateInfo) Clone() LocateInfo {
	if li == nil {
		return nil
	}
	res := make(LocateInfo, len(li))
	for id, t := range li {
		res[id] = t.Clone()
	}
	return res
}

// LogRecord 一条真实驾驶日志解码后的内容
type LogRecord struct {
	ID            string
	City          string
	MapCenter     geometry.Point
	EgoSpawnLane  LaneRef
	EgoTargetNode NodeRef
	LocateInfo    LocateInfo
}

// MapConfig 地图参数
type MapConfig struct {
	City   string         `yaml:"city"`
	Center geometry.Point `yaml:"center"`
	Radius float64        `yaml:"radius"`
}

// entity/lane/lane.go的依赖倒置
type ILane interface {
	// 初始化

	SetParentRoadWhenInit(parent IRoad)         // 设置lane所在road
	SetParentJunctionWhenInit(parent IJunction) // 设置lane所在junction

	// Print

	String() string

	// getter

	ID() int32            // 获取Lane ID
	Length() float64      // 获取Lane长度
	Width() float64       // 获取Lane宽度
	Type() mapv2.LaneType // 获取Lane类型

	Predecessors() map[int32]Connection                   // 获取Lane的所有前驱Lane与连接关系
	Successors() map[int32]Connection                     // 获取Lane的所有后继Lane与连接关系
	GetPositionByS(s float64) geometry.Point              // 将当前车道s坐标转换为xy坐标
	GetDirectionByS(s float64) geometry.PolylineDirection // 根据本车道s坐标计算切向角度
	ProjectToLane(pos geometry.Point) float64             // 将xy坐标投影到车道上，返回s坐标
	InRoad() bool                                         // 检查Lane是否为Road Lane
	MaxV() float64                                        // 获取车道限速

	ParentRoad() IRoad         // 获取Lane所在的Road
	ParentJunction() IJunction // 获取Lane所在的Junction
}

// Lane连接关系
type Connection struct {
	Lane ILane                    // 连接到的Lane
	Type mapv2.LaneConnectionType // 连接类型
}

// entity/road/road.go的依赖倒置
type IRoad interface {
	String() string

	ID() int32                   // 获取Road ID
	RightestDrivingLane() ILane  // 获取最右侧的行车道（最靠近路边）
	DrivingSuccessor() IJunction // 获取后继Junction
}

// entity/junction/junction.go的依赖倒置
type IJunction interface {
	ID() int32              // 获取Junction ID
	Node() NodeRef          // 获取Junction对应的路网节点标识
	Lanes() map[int32]ILane // 获取Junction内的所有车道（Lane ID -> Lane）
}

// hdmap/map.go的依赖倒置
type IMap interface {
	Config() MapConfig // 构建该地图时使用的参数

	LaneManager() ILaneManager
	RoadManager() IRoadManager
	JunctionManager() IJunctionManager

	// 根据车道标识查找行车道
	Lane(ref LaneRef) (ILane, error)
	// 根据节点标识查找路口
	Junction(node NodeRef) (IJunction, error)
	// 裁剪后的地图数据，供导航使用
	Pb() *mapv2.Map
}
