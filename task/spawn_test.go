package task

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/hdmap"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

func TestLocateEgo(t *testing.T) {
	pb := testCityMap()
	pb.Lanes[1].Width = 3.5
	pb.Lanes[1].MaxSpeed = 15
	m := hdmap.NewMap(entity.MapConfig{City: "PIT", Radius: 300}, pb)
	ref := entity.LaneRef{From: "1", To: "2", Index: 0}

	spawn, err := locateEgo(m, config.VehicleConfig{
		SpawnLaneIndex: ref,
		AgentInitPos:   geometry.Point{X: 7.5, Y: -1},
		AgentInitSpeed: geometry.Point{X: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), spawn.LaneID)
	assert.InDelta(t, 7.5, spawn.S, 1e-9)
	assert.InDelta(t, 7.5, spawn.Pos.X, 1e-9)
	assert.InDelta(t, 1, spawn.Offset, 1e-9)
	assert.Equal(t, 15., spawn.MaxV)

	// 超出车道范围的位置截断到车道终点
	spawn, err = locateEgo(m, config.VehicleConfig{
		SpawnLaneIndex: ref,
		AgentInitPos:   geometry.Point{X: 30, Y: 0},
	})
	require.NoError(t, err)
	assert.InDelta(t, 10, spawn.S, 1e-9)
	assert.InDelta(t, 10, spawn.Pos.X, 1e-9)

	_, err = locateEgo(m, config.VehicleConfig{SpawnLaneIndex: entity.LaneRef{From: "1", To: "2", Index: 1}})
	assert.ErrorContains(t, err, "spawn lane")
	_, err = locateEgo(m, config.VehicleConfig{SpawnLaneIndex: entity.LaneRef{From: "2", To: "1", Index: 0}})
	assert.ErrorContains(t, err, "spawn lane")
}
