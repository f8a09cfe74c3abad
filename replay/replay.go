package replay

import (
	"math"
	"slices"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// AgentState 背景车辆在某一时刻的回放状态
type AgentState struct {
	ID      entity.AgentID
	Pos     geometry.Point
	Heading float64 // 行驶方向（atan2，弧度）
}

type agent struct {
	id   entity.AgentID
	ts   []float64
	traj []entity.Sample
}

// at 线性插值得到t时刻的状态，t不在轨迹时间范围内时返回false
func (a *agent) at(t float64) (AgentState, bool) {
	n := len(a.ts)
	if n == 0 || t < a.ts[0] || t > a.ts[n-1] {
		return AgentState{}, false
	}
	s := AgentState{ID: a.id}
	if n == 1 {
		s.Pos = a.traj[0].Pos
		return s, true
	}
	i := sort.SearchFloat64s(a.ts, t)
	if i == 0 {
		i = 1
	}
	prev, next := a.traj[i-1], a.traj[i]
	k := 0.
	if next.T > prev.T {
		k = (t - prev.T) / (next.T - prev.T)
	}
	s.Pos = geometry.Blend(prev.Pos, next.Pos, k)
	s.Heading = math.Atan2(next.Pos.Y-prev.Pos.Y, next.Pos.X-prev.Pos.X)
	return s, true
}

// Manager 背景车辆轨迹回放
// 功能：按记录轨迹驱动背景车辆，替代基于规则的交通流
type Manager struct {
	agents []*agent
	t0     float64
	tEnd   float64
}

// NewManager 由轨迹集合创建回放管理器
// 功能：按ID排序智能体，以所有轨迹的最早时间戳作为回放零点
// 参数：li-背景车辆轨迹（不含自车）
func NewManager(li entity.LocateInfo) *Manager {
	ids := lo.Keys(li)
	slices.Sort(ids)
	m := &Manager{
		agents: make([]*agent, 0, len(ids)),
		t0:     math.Inf(1),
		tEnd:   math.Inf(-1),
	}
	for _, id := range ids {
		track := li[id]
		if track == nil || len(track.Traj) == 0 {
			log.Debugf("skip agent %s without trajectory", id)
			continue
		}
		m.agents = append(m.agents, &agent{
			id:   id,
			traj: track.Traj,
			ts: lo.Map(track.Traj, func(s entity.Sample, _ int) float64 {
				return s.T
			}),
		})
		m.t0 = math.Min(m.t0, track.Traj[0].T)
		m.tEnd = math.Max(m.tEnd, track.Traj[len(track.Traj)-1].T)
	}
	if len(m.agents) == 0 {
		m.t0, m.tEnd = 0, 0
	}
	return m
}

// Len 回放的智能体数量
func (m *Manager) Len() int {
	return len(m.agents)
}

// Duration 回放总时长（秒）
func (m *Manager) Duration() float64 {
	return m.tEnd - m.t0
}

// At 获取相对零点t秒时在场的背景车辆状态
// 返回：按ID排序的状态列表，不在轨迹时间范围内的智能体不出现
func (m *Manager) At(t float64) []AgentState {
	abs := m.t0 + t
	states := parallel.GoMap(m.agents, func(a *agent) lo.Tuple2[AgentState, bool] {
		s, ok := a.at(abs)
		return lo.T2(s, ok)
	})
	return lo.FilterMap(states, func(s lo.Tuple2[AgentState, bool], _ int) (AgentState, bool) {
		return s.Unpack()
	})
}
