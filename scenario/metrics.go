package scenario

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// mapCacheLookups 地图缓存查询次数，按结果区分
	mapCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logreplay_map_cache_lookups_total",
		Help: "Total map cache lookups by result",
	}, []string{"result"}) // "hit" or "miss"

	// mapBuildDuration 地图构建耗时
	mapBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logreplay_map_build_duration_seconds",
		Help:    "Map build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// mapBuildErrors 地图构建失败次数
	mapBuildErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logreplay_map_build_errors_total",
		Help: "Total failed map builds",
	})

	// episodeResets 场景重置次数，按模式与结果区分
	episodeResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logreplay_episode_resets_total",
		Help: "Total episode resets by mode and result",
	}, []string{"mode", "result"})
)
