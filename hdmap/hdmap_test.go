package hdmap

import (
	"errors"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

func testLane(id, parent int32, x0, y0, x1, y1 float64, pres, sucs []int32) *mapv2.Lane {
	conns := func(ids []int32) []*mapv2.LaneConnection {
		return lo.Map(ids, func(id int32, _ int) *mapv2.LaneConnection {
			return &mapv2.LaneConnection{Id: id}
		})
	}
	return &mapv2.Lane{
		Id:       id,
		Type:     mapv2.LaneType_LANE_TYPE_DRIVING,
		MaxSpeed: 10,
		Width:    3.2,
		ParentId: parent,
		CenterLine: &geov2.Polyline{Nodes: []*geov2.XYPosition{
			{X: x0, Y: y0}, {X: x1, Y: y1},
		}},
		Predecessors: conns(pres),
		Successors:   conns(sucs),
	}
}

// testCityMap 路口299 -> 道路100（车道1、2）-> 路口300 -> 道路101（车道4），远处另有道路102（车道5）
func testCityMap() *mapv2.Map {
	return &mapv2.Map{
		Lanes: []*mapv2.Lane{
			testLane(1, 100, 0, 0, 10, 0, []int32{6}, []int32{3}),
			testLane(2, 100, 0, 3, 10, 3, []int32{6}, []int32{3}),
			testLane(3, 300, 10, 0, 12, 0, []int32{1, 2}, []int32{4}),
			testLane(4, 101, 12, 0, 20, 0, []int32{3, 5}, nil),
			testLane(5, 102, 1000, 1000, 1010, 1000, nil, []int32{4}),
			testLane(6, 299, -2, 0, 0, 0, nil, []int32{1, 2}),
		},
		Roads: []*mapv2.Road{
			{Id: 100, LaneIds: []int32{1, 2}},
			{Id: 101, LaneIds: []int32{4}},
			{Id: 102, LaneIds: []int32{5}},
		},
		Junctions: []*mapv2.Junction{
			{Id: 299, LaneIds: []int32{6}},
			{Id: 300, LaneIds: []int32{3}},
		},
	}
}

func laneIDs(m *mapv2.Map) []int32 {
	return lo.Map(m.Lanes, func(l *mapv2.Lane, _ int) int32 { return l.Id })
}

func TestCrop(t *testing.T) {
	full := testCityMap()
	res := Crop(full, geometry.Point{X: 0, Y: 0}, 50)

	assert.Equal(t, []int32{1, 2, 3, 4, 6}, laneIDs(res))
	assert.Len(t, res.Roads, 2)
	assert.Len(t, res.Junctions, 2)

	lane4, ok := lo.Find(res.Lanes, func(l *mapv2.Lane) bool { return l.Id == 4 })
	require.True(t, ok)
	require.Len(t, lane4.Predecessors, 1)
	assert.Equal(t, int32(3), lane4.Predecessors[0].Id)
	// 原地图不被修改
	assert.Len(t, full.Lanes[3].Predecessors, 2)
}

func TestCropKeepsWholeRoad(t *testing.T) {
	res := Crop(testCityMap(), geometry.Point{X: 0, Y: 3}, 0.5)
	assert.Equal(t, []int32{1, 2}, laneIDs(res))
	require.Len(t, res.Roads, 1)
	assert.Equal(t, int32(100), res.Roads[0].Id)
	assert.Empty(t, res.Junctions)
}

func TestNewMap(t *testing.T) {
	cfg := entity.MapConfig{City: "PIT", Center: geometry.Point{}, Radius: 50}
	m := NewMap(cfg, Crop(testCityMap(), cfg.Center, cfg.Radius))
	assert.Equal(t, cfg, m.Config())
	assert.Equal(t, 5, m.LaneManager().Len())
	assert.Equal(t, 2, m.RoadManager().Len())
	assert.Equal(t, 2, m.JunctionManager().Len())

	l, err := m.Lane(entity.LaneRef{From: "299", To: "300", Index: 0})
	require.NoError(t, err)
	assert.Equal(t, int32(1), l.ID())
	l, err = m.Lane(entity.LaneRef{From: "299", To: "300", Index: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(2), l.ID())

	_, err = m.Lane(entity.LaneRef{From: "299", To: "300", Index: 2})
	assert.Error(t, err)
	_, err = m.Lane(entity.LaneRef{From: "300", To: "299", Index: 0})
	assert.Error(t, err)

	j, err := m.Junction("300")
	require.NoError(t, err)
	assert.Equal(t, int32(300), j.ID())
	_, err = m.Junction("968")
	assert.Error(t, err)
}

type citySourceFunc func(city string) (*mapv2.Map, error)

func (f citySourceFunc) Load(city string) (*mapv2.Map, error) {
	return f(city)
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(citySourceFunc(func(city string) (*mapv2.Map, error) {
		if city != "PIT" {
			return nil, errors.New("unknown city")
		}
		return testCityMap(), nil
	}))

	m, err := b.Build(entity.MapConfig{City: "PIT", Radius: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, m.LaneManager().Len())

	_, err = b.Build(entity.MapConfig{City: "MIA", Radius: 50})
	assert.ErrorContains(t, err, "unknown city")
	_, err = b.Build(entity.MapConfig{City: "PIT", Center: geometry.Point{X: 5000, Y: 5000}, Radius: 50})
	assert.ErrorContains(t, err, "no lane")
	_, err = b.Build(entity.MapConfig{City: "PIT"})
	assert.ErrorContains(t, err, "radius")
}

type countingLoader struct {
	n int
}

func (l *countingLoader) LoadMap(g *config.EngineConfig) (entity.IMap, error) {
	l.n++
	return NewMap(g.MapConfig, testCityMap()), nil
}

func TestManager(t *testing.T) {
	loader := &countingLoader{}
	m := NewManager(loader)
	assert.Nil(t, m.Current())

	g := config.NewEngineConfig()
	mp, err := m.Reset(g)
	require.NoError(t, err)
	assert.Same(t, mp, m.Current())

	again, err := m.Reset(g)
	require.NoError(t, err)
	assert.Same(t, mp, again)
	assert.Equal(t, 1, loader.n)

	m.Unload()
	assert.Nil(t, m.Current())
	_, err = m.Reset(g)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.n)
}
