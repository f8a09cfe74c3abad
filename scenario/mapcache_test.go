package scenario

import (
	"errors"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// fakeMap 只记录构建参数的地图
type fakeMap struct {
	entity.IMap
	cfg entity.MapConfig
}

func (m *fakeMap) Config() entity.MapConfig { return m.cfg }
func (m *fakeMap) Pb() *mapv2.Map          { return &mapv2.Map{} }

type countingBuilder struct {
	calls []entity.MapConfig
	err   error
}

func (b *countingBuilder) Build(cfg entity.MapConfig) (entity.IMap, error) {
	b.calls = append(b.calls, cfg)
	if b.err != nil {
		return nil, b.err
	}
	return &fakeMap{cfg: cfg}, nil
}

func TestMapKey(t *testing.T) {
	assert.Equal(t, "2599.6-1200.0", MapKey(geometry.Point{X: 2599.5505965123866, Y: 1200.0214763629717}))
	assert.Equal(t, "-1.0-0.5", MapKey(geometry.Point{X: -1, Y: 0.5}))
	assert.Equal(t, "0.0-100.0", MapKey(geometry.Point{X: -0.04, Y: 100}))
	assert.Equal(t, "100.0-0.0", MapKey(geometry.Point{X: 100, Y: -0.04}))
	assert.Equal(t, MapKey(geometry.Point{X: 0.04, Y: 0.04}), MapKey(geometry.Point{X: -0.04, Y: -0.04}))
}

func TestMapCacheNegativeZero(t *testing.T) {
	b := &countingBuilder{}
	c := NewMapCache(b)

	m1, err := c.GetOrBuild(entity.MapConfig{Center: geometry.Point{X: 0.04, Y: 100}})
	require.NoError(t, err)
	m2, err := c.GetOrBuild(entity.MapConfig{Center: geometry.Point{X: -0.04, Y: 100}})
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.Len(t, b.calls, 1)
}

func TestMapCacheReuse(t *testing.T) {
	b := &countingBuilder{}
	c := NewMapCache(b)

	m1, err := c.GetOrBuild(entity.MapConfig{City: "PIT", Center: geometry.Point{X: 100.01, Y: 200.02}, Radius: 300})
	require.NoError(t, err)
	m2, err := c.GetOrBuild(entity.MapConfig{City: "PIT", Center: geometry.Point{X: 100.04, Y: 199.99}, Radius: 300})
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.Len(t, b.calls, 1)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, CacheStats{Hits: 1, Builds: 1}, c.Stats())
}

func TestMapCacheDistinct(t *testing.T) {
	b := &countingBuilder{}
	c := NewMapCache(b)

	m1, err := c.GetOrBuild(entity.MapConfig{Center: geometry.Point{X: 100, Y: 200}})
	require.NoError(t, err)
	m2, err := c.GetOrBuild(entity.MapConfig{Center: geometry.Point{X: 100.2, Y: 200}})
	require.NoError(t, err)

	assert.NotSame(t, m1, m2)
	assert.Len(t, b.calls, 2)
	assert.Equal(t, 2, c.Len())
}

func TestMapCacheBuildError(t *testing.T) {
	b := &countingBuilder{err: errors.New("boom")}
	c := NewMapCache(b)
	cfg := entity.MapConfig{Center: geometry.Point{X: 1, Y: 1}}

	_, err := c.GetOrBuild(cfg)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 0, c.Len())

	// 失败不写入缓存，下次重新构建
	b.err = nil
	m, err := c.GetOrBuild(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, m.Config())
	assert.Len(t, b.calls, 2)
}

func TestMapCacheIndependentInstances(t *testing.T) {
	b := &countingBuilder{}
	c1, c2 := NewMapCache(b), NewMapCache(b)
	cfg := entity.MapConfig{Center: geometry.Point{X: 1, Y: 1}}
	m1, err := c1.GetOrBuild(cfg)
	require.NoError(t, err)
	m2, err := c2.GetOrBuild(cfg)
	require.NoError(t, err)
	assert.NotSame(t, m1, m2)
}

func TestMapBuilderFunc(t *testing.T) {
	var got entity.MapConfig
	f := MapBuilderFunc(func(cfg entity.MapConfig) (entity.IMap, error) {
		got = cfg
		return nil, nil
	})
	_, err := f.Build(entity.MapConfig{City: "MIA"})
	require.NoError(t, err)
	assert.Equal(t, "MIA", got.City)
}
