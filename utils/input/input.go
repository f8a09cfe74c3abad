package input

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/cache"
	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/general/common/v2/protoutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/protobuf/proto"
)

// MapLoader 城市地图加载器
// 功能：按城市名加载完整的城市地图，支持文件、MongoDB与本地pb缓存
// 说明：每个城市的地图在进程内只加载一次，裁剪由调用方完成
type MapLoader struct {
	paths    map[string]config.InputPath
	client   *mongo.Client
	cacheDir string

	mtx    sync.Mutex
	loaded map[string]*mapv2.Map
}

// NewMapLoader 创建城市地图加载器
// 功能：检查缓存目录有效性，按需建立MongoDB连接
// 参数：input-输入配置，cacheDir-缓存目录（为空则禁用缓存）
// 返回：地图加载器
func NewMapLoader(input config.Input, cacheDir string) *MapLoader {
	if !preCheckCache(cacheDir) {
		cacheDir = ""
	}
	l := &MapLoader{
		paths:    input.Maps,
		cacheDir: cacheDir,
		loaded:   make(map[string]*mapv2.Map),
	}
	if input.URI != "" {
		l.client = mongoutil.NewClient(input.URI)
	}
	return l
}

// Load 加载城市地图
// 功能：返回城市的完整地图数据
// 参数：city-城市名
// 返回：地图数据，城市未配置或加载失败时返回错误
// 算法说明：
// 1. 已加载过的城市直接返回
// 2. 配置了文件则从文件加载
// 3. 否则通过缓存机制从MongoDB加载
func (l *MapLoader) Load(city string) (*mapv2.Map, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if m, ok := l.loaded[city]; ok {
		return m, nil
	}
	path, ok := l.paths[city]
	if !ok {
		return nil, fmt.Errorf("no map configured for city %q", city)
	}
	var res *mapv2.Map
	if path.File != "" {
		var m mapv2.Map
		if err := protoutil.UnmarshalFromFile(&m, path.File); err != nil {
			return nil, fmt.Errorf("failed to load map of %s from file: %w", city, err)
		}
		res = &m
	} else {
		var err error
		if res, err = load[mapv2.Map](l.client, path, l.cacheDir, nil, nil); err != nil {
			return nil, fmt.Errorf("failed to load map of %s: %w", city, err)
		}
	}
	log.Infof("map of %s: %d lanes, %d roads, %d junctions", city, len(res.Lanes), len(res.Roads), len(res.Junctions))
	l.loaded[city] = res
	return res, nil
}

// Close 断开MongoDB连接
func (l *MapLoader) Close() {
	if l.client != nil {
		if err := l.client.Disconnect(context.Background()); err != nil {
			log.Warnf("failed to disconnect mongo: %v", err)
		}
	}
}

// load 加载数据（泛型函数）
// 功能：从MongoDB或缓存中加载数据
// 参数：client-MongoDB客户端，inputPath-输入路径配置，cacheDir-缓存目录，classNameMapper-类名映射器，handler-数据处理函数，opts-查询选项
// 返回：加载的数据对象
// 说明：只允许缓存且缓存不存在时返回错误
func load[T any, PT interface {
	proto.Message
	*T
}](
	client *mongo.Client,
	inputPath config.InputPath,
	cacheDir string,
	classNameMapper func(string) string,
	handler func(className string, pb any, rawBson bson.Raw) error,
	opts ...*options.FindOptions,
) (res PT, err error) {
	var downloadFunc func() PT
	var downloadErr error
	if !inputPath.OnlyCache {
		if client == nil {
			return nil, errors.New("mongo uri is not configured")
		}
		coll := mongoutil.GetMongoColl(client, inputPath)
		downloadFunc = func() PT {
			pb, errs := mongoutil.DownloadPbFromMongo[T, PT](context.Background(), coll, classNameMapper, handler, opts...)
			if len(errs) > 0 {
				for _, err := range errs {
					log.Errorf("failed to download: %v", err)
				}
				downloadErr = errors.Join(errs...)
			}
			return pb
		}
	}
	log.Infof("start fetching from %s.%s", inputPath.DB, inputPath.Col)
	res, err = cache.LoadWithCache(cacheDir, inputPath, downloadFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to load with cache: %w", err)
	}
	if downloadErr != nil {
		return nil, downloadErr
	}
	log.Infof("finish fetching from %s.%s", inputPath.DB, inputPath.Col)
	return res, nil
}
