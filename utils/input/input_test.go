package input

import (
	"os"
	"path/filepath"
	"testing"

	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
	"google.golang.org/protobuf/proto"
)

func writeMapFile(t *testing.T, m *mapv2.Map) string {
	t.Helper()
	data, err := proto.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "map.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestPreCheckCache(t *testing.T) {
	assert.False(t, preCheckCache(""))
	assert.True(t, preCheckCache(t.TempDir()))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.False(t, preCheckCache(file))
	assert.False(t, preCheckCache(filepath.Join(t.TempDir(), "missing")))
}

func TestMapLoaderFromFile(t *testing.T) {
	path := writeMapFile(t, &mapv2.Map{
		Lanes: []*mapv2.Lane{{
			Id:   1,
			Type: mapv2.LaneType_LANE_TYPE_DRIVING,
			CenterLine: &geov2.Polyline{Nodes: []*geov2.XYPosition{
				{X: 0, Y: 0}, {X: 10, Y: 0},
			}},
		}},
	})
	l := NewMapLoader(config.Input{
		Maps: map[string]config.InputPath{"PIT": {File: path}},
	}, "")
	defer l.Close()

	m1, err := l.Load("PIT")
	require.NoError(t, err)
	assert.Len(t, m1.Lanes, 1)

	m2, err := l.Load("PIT")
	require.NoError(t, err)
	assert.Same(t, m1, m2)
}

func TestMapLoaderErrors(t *testing.T) {
	l := NewMapLoader(config.Input{
		Maps: map[string]config.InputPath{
			"MIA": {File: filepath.Join(t.TempDir(), "missing.pb")},
			"PIT": {DB: "map", Col: "pit"},
		},
	}, "")
	defer l.Close()

	_, err := l.Load("NYC")
	assert.ErrorContains(t, err, "no map configured")

	_, err = l.Load("MIA")
	assert.Error(t, err)

	_, err = l.Load("PIT")
	assert.ErrorContains(t, err, "mongo uri is not configured")
}
