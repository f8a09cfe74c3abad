package replay

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

func track(t0 float64, pts ...geometry.Point) *entity.AgentTrack {
	tr := &entity.AgentTrack{}
	for i, p := range pts {
		tr.Traj = append(tr.Traj, entity.Sample{T: t0 + float64(i)*0.1, Pos: p})
	}
	if len(pts) > 0 {
		tr.InitPos = pts[0]
	}
	return tr
}

func TestReplay(t *testing.T) {
	m := NewManager(entity.LocateInfo{
		"b": track(100.1, geometry.Point{X: 0, Y: 0}, geometry.Point{X: 0, Y: 1}),
		"a": track(100, geometry.Point{X: 0, Y: 0}, geometry.Point{X: 1, Y: 0}, geometry.Point{X: 2, Y: 0}),
		"c": {},
	})
	assert.Equal(t, 2, m.Len())
	assert.InDelta(t, 0.2, m.Duration(), 1e-9)

	states := m.At(0)
	require.Len(t, states, 1)
	assert.Equal(t, entity.AgentID("a"), states[0].ID)
	assert.Equal(t, geometry.Point{}, states[0].Pos)

	states = m.At(0.15)
	require.Len(t, states, 2)
	assert.Equal(t, entity.AgentID("a"), states[0].ID)
	assert.InDelta(t, 1.5, states[0].Pos.X, 1e-9)
	assert.InDelta(t, 0, states[0].Heading, 1e-9)
	assert.Equal(t, entity.AgentID("b"), states[1].ID)
	assert.InDelta(t, 0.5, states[1].Pos.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, states[1].Heading, 1e-9)

	assert.Empty(t, m.At(1))
	assert.Empty(t, m.At(-1))
}

func TestReplayEmpty(t *testing.T) {
	m := NewManager(nil)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0., m.Duration())
	assert.Empty(t, m.At(0))
}
