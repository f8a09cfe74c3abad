package scenario

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// MapBuilder 地图构建器
type MapBuilder interface {
	Build(cfg entity.MapConfig) (entity.IMap, error)
}

// MapBuilderFunc 函数形式的地图构建器
type MapBuilderFunc func(cfg entity.MapConfig) (entity.IMap, error)

func (f MapBuilderFunc) Build(cfg entity.MapConfig) (entity.IMap, error) {
	return f(cfg)
}

// MapKey 地图缓存键，中心坐标保留一位小数
// 说明：只由中心决定，城市与半径不参与；舍入后为0的坐标统一写作0.0
func MapKey(center geometry.Point) string {
	return keyCoord(center.X) + "-" + keyCoord(center.Y)
}

// keyCoord 保留一位小数，-0.0归一为0.0
func keyCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

// CacheStats 地图缓存统计
type CacheStats struct {
	Hits   int // 命中次数
	Builds int // 实际构建次数
}

// MapCache 进程级地图缓存
// 功能：相同中心的地图只构建一次，之后返回同一实例
// 说明：缓存条目不会被淘汰，生命周期与进程一致
type MapCache struct {
	builder MapBuilder

	mtx   sync.Mutex
	maps  map[string]entity.IMap
	stats CacheStats
}

// NewMapCache 创建地图缓存
func NewMapCache(builder MapBuilder) *MapCache {
	return &MapCache{
		builder: builder,
		maps:    make(map[string]entity.IMap),
	}
}

// GetOrBuild 获取或构建地图
// 功能：命中缓存时直接返回已有实例，否则构建并缓存
// 参数：cfg-地图参数
// 返回：地图实例，构建失败时不写入缓存
func (c *MapCache) GetOrBuild(cfg entity.MapConfig) (entity.IMap, error) {
	key := MapKey(cfg.Center)
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if m, ok := c.maps[key]; ok {
		c.stats.Hits++
		mapCacheLookups.WithLabelValues("hit").Inc()
		log.Infof("use existing map %s", key)
		return m, nil
	}
	mapCacheLookups.WithLabelValues("miss").Inc()
	log.Infof("build new map %s (city=%s, radius=%v)", key, cfg.City, cfg.Radius)
	start := time.Now()
	m, err := c.builder.Build(cfg)
	mapBuildDuration.Observe(time.Since(start).Seconds())
	c.stats.Builds++
	if err != nil {
		mapBuildErrors.Inc()
		return nil, fmt.Errorf("failed to build map %s: %w", key, err)
	}
	c.maps[key] = m
	return m, nil
}

// Len 缓存的地图数量
func (c *MapCache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.maps)
}

// Stats 缓存统计
func (c *MapCache) Stats() CacheStats {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.stats
}
