package scenario

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// InitialSpeed 由记录轨迹估计初始速度
// 功能：用前两个采样点的差分乘以采样频率得到初速度向量
// 参数：track-智能体轨迹（按时间升序），freq-采样频率（Hz）
// 返回：初速度向量（米/秒），采样点不足两个时返回ErrInsufficientTrajectory
// 说明：不使用时间戳差，假定采样严格等间隔
func InitialSpeed(track *entity.AgentTrack, freq float64) (geometry.Point, error) {
	if track == nil || len(track.Traj) < 2 {
		n := 0
		if track != nil {
			n = len(track.Traj)
		}
		return geometry.Point{}, fmt.Errorf("%w: got %d", ErrInsufficientTrajectory, n)
	}
	p0, p1 := track.Traj[0].Pos, track.Traj[1].Pos
	return geometry.Point{
		X: (p1.X - p0.X) * freq,
		Y: (p1.Y - p0.Y) * freq,
	}, nil
}
