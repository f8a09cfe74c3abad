package config

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"gopkg.in/yaml.v2"
)

const testYAML = `
input:
  uri: mongodb://localhost:27017
  maps:
    PIT:
      db: argoverse
      col: map_pit
    MIA:
      file: data/mia.pb
  records:
    dir: data/real_data
    agent_pos: data/agent_pos
control:
  step:
    start: 0
    total: 200
    interval: 0.1
  episodes: 3
scenario:
  mode: generalization
  partition: train
  start_seed: 2
  episode_num: 10
  exclude:
    - b1ca08f1-24b0-3c39-ba4e-d5a92868462c
  single:
    spawn_lane: {from: "1", to: "2", index: 1}
`

func TestUnmarshal(t *testing.T) {
	var c Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(testYAML), &c))
	assert.Equal(t, "argoverse", c.Input.Maps["PIT"].GetDb())
	assert.Equal(t, "argoverse.map_pit.pb", c.Input.Maps["PIT"].GetCachePath())
	assert.Equal(t, "data/mia.pb", c.Input.Maps["MIA"].File)
	assert.Equal(t, "data/agent_pos", c.Input.Records.AgentPos)
	assert.Equal(t, []string{"b1ca08f1-24b0-3c39-ba4e-d5a92868462c"}, c.Scenario.Exclude)
	assert.Equal(t, entity.LaneRef{From: "1", To: "2", Index: 1}, c.Scenario.Single.SpawnLane)

	var bad Config
	assert.Error(t, yaml.UnmarshalStrict([]byte("scenario:\n  unknown: 1\n"), &bad))
}

func TestNewRuntimeConfigDefaults(t *testing.T) {
	rc, err := NewRuntimeConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, ModeGeneralization, rc.S.Mode)
	assert.Equal(t, DefaultEgoID, rc.S.EgoID)
	assert.Equal(t, DefaultFreq, rc.S.Freq)
	assert.Equal(t, DefaultRadius, rc.S.Radius)
	assert.Equal(t, DefaultPartition, rc.S.Partition)
	assert.True(t, rc.FlipCenter)
	assert.InDelta(t, 0.1, rc.C.Step.Interval, 1e-12)
}

func TestNewRuntimeConfigSingle(t *testing.T) {
	rc, err := NewRuntimeConfig(Config{Scenario: Scenario{Mode: ModeSingle}})
	require.NoError(t, err)
	assert.False(t, rc.FlipCenter)
	assert.Equal(t, DefaultSingleLogID, rc.S.Single.LogID)
	assert.Equal(t, DefaultSingleSpawnLane, rc.S.Single.SpawnLane)
	assert.Equal(t, geometry.Point{X: 2599.5505965123866, Y: 1200.0214763629717}, rc.SingleCenter)

	flip := true
	rc, err = NewRuntimeConfig(Config{Scenario: Scenario{Mode: ModeSingle, FlipCenter: &flip}})
	require.NoError(t, err)
	assert.True(t, rc.FlipCenter)
}

func TestNewRuntimeConfigInvalid(t *testing.T) {
	for _, s := range []Scenario{
		{Mode: "train"},
		{StartSeed: -1},
		{EpisodeNum: -1},
		{Freq: -10},
		{Mode: ModeSingle, Single: SingleScenario{Center: []float64{1}}},
	} {
		_, err := NewRuntimeConfig(Config{Scenario: s})
		assert.Error(t, err, "%+v", s)
	}
}
