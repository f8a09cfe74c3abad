package task

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// EgoSpawn 自车在出生车道上的落位
type EgoSpawn struct {
	LaneID  int32          // 出生车道ID
	S       float64        // 出生车道上的s坐标
	Pos     geometry.Point // 投影到车道中心线上的位置
	Heading float64        // 车道切向角度（弧度，逆时针为正）
	Offset  float64        // 日志初始位置到车道中心线的距离
	MaxV    float64        // 出生车道限速
}

// locateEgo 将日志中的自车初始位置投影到出生车道
// 功能：计算自车在出生车道上的s坐标、位置与朝向
// 参数：m-当前地图，v-自车配置
// 返回：落位结果，出生车道不在地图中时返回错误
// 说明：初始位置偏离车道中心线超过半个车道宽度或初速度超过车道限速时只告警
func locateEgo(m entity.IMap, v config.VehicleConfig) (*EgoSpawn, error) {
	l, err := m.Lane(v.SpawnLaneIndex)
	if err != nil {
		return nil, fmt.Errorf("spawn lane %v: %w", v.SpawnLaneIndex, err)
	}
	s := l.ProjectToLane(v.AgentInitPos)
	pos := l.GetPositionByS(s)
	spawn := &EgoSpawn{
		LaneID:  l.ID(),
		S:       s,
		Pos:     pos,
		Heading: l.GetDirectionByS(s).Direction,
		Offset:  geometry.Distance2D(pos, v.AgentInitPos),
		MaxV:    l.MaxV(),
	}
	if w := l.Width(); w > 0 && spawn.Offset > w/2 {
		log.Warnf("ego init pos %v is %.2fm off %v (width %.2f)", v.AgentInitPos, spawn.Offset, l, w)
	}
	if speed := v.AgentInitSpeed.Length2D(); speed > spawn.MaxV {
		log.Warnf("ego init speed %.2f exceeds the limit %.2f of %v", speed, spawn.MaxV, l)
	}
	return spawn, nil
}
