package route

import (
	"testing"

	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/hdmap"
)

func lane(id int32, x0, x1 float64, pres, sucs []int32) *mapv2.Lane {
	l := &mapv2.Lane{
		Id:   id,
		Type: mapv2.LaneType_LANE_TYPE_DRIVING,
		CenterLine: &geov2.Polyline{Nodes: []*geov2.XYPosition{
			{X: x0, Y: 0}, {X: x1, Y: 0},
		}},
	}
	for _, p := range pres {
		l.Predecessors = append(l.Predecessors, &mapv2.LaneConnection{Id: p})
	}
	for _, s := range sucs {
		l.Successors = append(l.Successors, &mapv2.LaneConnection{Id: s})
	}
	return l
}

// 路口1 -> 道路10 -> 路口2 -> 道路11
func testMap() entity.IMap {
	pb := &mapv2.Map{
		Lanes: []*mapv2.Lane{
			lane(1, -2, 0, nil, []int32{2}),
			lane(2, 0, 10, []int32{1}, []int32{3}),
			lane(3, 10, 12, []int32{2}, []int32{4}),
			lane(4, 12, 20, []int32{3}, nil),
		},
		Roads: []*mapv2.Road{
			{Id: 10, LaneIds: []int32{2}},
			{Id: 11, LaneIds: []int32{4}},
		},
		Junctions: []*mapv2.Junction{
			{Id: 1, LaneIds: []int32{1}},
			{Id: 2, LaneIds: []int32{3}},
		},
	}
	return hdmap.NewMap(entity.MapConfig{City: "test", Radius: 100}, pb)
}

func TestDestinationLane(t *testing.T) {
	m := testMap()
	j, err := m.Junction("2")
	require.NoError(t, err)
	l, err := destinationLane(j)
	require.NoError(t, err)
	assert.Equal(t, int32(2), l.ID())

	j, err = m.Junction("1")
	require.NoError(t, err)
	_, err = destinationLane(j)
	assert.ErrorContains(t, err, "no road enters junction 1")
}

func TestDestinationLaneRightmost(t *testing.T) {
	pb := &mapv2.Map{
		Lanes: []*mapv2.Lane{
			lane(1, -2, 0, nil, []int32{2, 5}),
			lane(2, 0, 10, []int32{1}, []int32{3}),
			lane(5, 0, 10, []int32{1}, []int32{3}),
			lane(3, 10, 12, []int32{2, 5}, nil),
		},
		Roads:     []*mapv2.Road{{Id: 10, LaneIds: []int32{2, 5}}},
		Junctions: []*mapv2.Junction{{Id: 1, LaneIds: []int32{1}}, {Id: 2, LaneIds: []int32{3}}},
	}
	m := hdmap.NewMap(entity.MapConfig{City: "test", Radius: 100}, pb)
	j, err := m.Junction("2")
	require.NoError(t, err)
	l, err := destinationLane(j)
	require.NoError(t, err)
	assert.Equal(t, int32(5), l.ID())
}

func TestPlanEgoSameRoad(t *testing.T) {
	r := &LocalRouter{m: testMap()}
	roads, err := r.PlanEgo(entity.LaneRef{From: "1", To: "2", Index: 0}, "2", 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{10}, roads)
}

func TestPlanEgoErrors(t *testing.T) {
	r := &LocalRouter{m: testMap()}
	_, err := r.PlanEgo(entity.LaneRef{From: "1", To: "2", Index: 3}, "2", 0)
	assert.ErrorContains(t, err, "spawn lane")
	_, err = r.PlanEgo(entity.LaneRef{From: "1", To: "2", Index: 0}, "968", 0)
	assert.ErrorContains(t, err, "destination 968")
}
