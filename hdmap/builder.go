package hdmap

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// CitySource 城市完整地图来源
type CitySource interface {
	Load(city string) (*mapv2.Map, error)
}

// Builder 地图构建器
// 功能：加载城市地图，按中心与半径裁剪后构建地图实例
type Builder struct {
	source CitySource
}

// NewBuilder 创建地图构建器
func NewBuilder(source CitySource) *Builder {
	return &Builder{source: source}
}

// Build 构建地图实例
// 参数：cfg-地图参数
// 返回：地图实例，城市地图加载失败或裁剪结果为空时返回错误
func (b *Builder) Build(cfg entity.MapConfig) (entity.IMap, error) {
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("invalid map radius %v", cfg.Radius)
	}
	full, err := b.source.Load(cfg.City)
	if err != nil {
		return nil, err
	}
	cropped := Crop(full, cfg.Center, cfg.Radius)
	if len(cropped.Lanes) == 0 {
		return nil, fmt.Errorf("no lane of %s within %vm of (%.1f, %.1f)", cfg.City, cfg.Radius, cfg.Center.X, cfg.Center.Y)
	}
	log.Infof("crop %s at (%.1f, %.1f) r=%v: %d lanes, %d roads, %d junctions",
		cfg.City, cfg.Center.X, cfg.Center.Y, cfg.Radius,
		len(cropped.Lanes), len(cropped.Roads), len(cropped.Junctions))
	return NewMap(cfg, cropped), nil
}
