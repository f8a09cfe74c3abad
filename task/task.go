package task

import (
	"context"
	"fmt"
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/logreplay-sim/clock"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity/route"
	"github.com/tsinghua-fib-lab/logreplay-sim/hdmap"
	"github.com/tsinghua-fib-lab/logreplay-sim/replay"
	"github.com/tsinghua-fib-lab/logreplay-sim/scenario"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/input"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/randengine"
)

const (
	SelfName = "logreplay" // 本程序在模拟任务集群中的名字
)

// Options 仿真任务的运行参数
type Options struct {
	Job               string // 任务名
	CacheDir          string // 地图缓存目录，为空则禁用缓存
	HeartbeatInterval int32  // 心跳日志间隔步数
	StartSidecarServe bool   // 是否启动sidecar服务
}

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：按episode循环，每个episode由场景加载管理器重建场景配置
type Context struct {
	opts Options
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理与syncer的交互，为nil时独立运行
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 引擎配置，每个episode整体替换场景相关字段
	engineConfig *config.EngineConfig

	// 城市地图加载器
	mapLoader *input.MapLoader
	// 日志存储的资源释放
	closeStore func()
	// 场景加载管理器
	scenario *scenario.Manager
	// 当前地图
	mapManager *hdmap.Manager
	// episode种子选择
	rand *randengine.Engine

	// 导航服务（每张地图一个）
	routers map[entity.IMap]*route.LocalRouter
	// 当前episode自车的道路序列
	egoRoute []int32
	// 当前episode自车在出生车道上的落位
	egoSpawn *EgoSpawn
	// 背景车辆回放
	replay *replay.Manager
	// 当前步的背景车辆状态
	agents []replay.AgentState
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化配置、数据来源与场景加载管理器，注册RPC服务
// 参数：opts-运行参数，c-配置对象，sidecar-外部sidecar实例（可为nil）
// 返回：初始化完成的Context实例，配置非法或日志列表为空时返回错误
// 算法说明：
// 1. 补全并校验配置
// 2. 创建地图加载器、日志存储与出生点覆盖来源
// 3. 创建场景加载管理器（列出并筛选候选日志）与地图管理器
// 4. 注册时钟服务并按需启动sidecar
func NewContext(opts Options, c config.Config, sidecar *syncer.Sidecar) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 100
	}
	store, closeStore, err := newStore(rc)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		opts:           opts,
		clock:          clock.New(rc.C.Step),
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  rc,
		engineConfig:   config.NewEngineConfig(),
		mapLoader:      input.NewMapLoader(rc.All.Input, opts.CacheDir),
		closeStore:     closeStore,
		rand:           randengine.New(uint64(rc.S.StartSeed), rc.S.SeedOffset),
		routers:        make(map[entity.IMap]*route.LocalRouter),
	}
	ctx.scenario, err = scenario.NewManager(
		context.Background(), rc, store, newOverrides(rc), hdmap.NewBuilder(ctx.mapLoader),
	)
	if err != nil {
		ctx.mapLoader.Close()
		closeStore()
		return nil, err
	}
	ctx.mapManager = hdmap.NewManager(ctx.scenario)

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		// sidecar协程，用于提供gRPC服务
		if opts.StartSidecarServe {
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) EngineConfig() *config.EngineConfig {
	return ctx.engineConfig
}

func (ctx *Context) Scenario() *scenario.Manager {
	return ctx.scenario
}

func (ctx *Context) MapManager() *hdmap.Manager {
	return ctx.mapManager
}

// Agents 当前步的背景车辆状态
func (ctx *Context) Agents() []replay.AgentState {
	return ctx.agents
}

// EgoSpawn 当前episode自车的出生落位，出生车道不在地图中时为nil
func (ctx *Context) EgoSpawn() *EgoSpawn {
	return ctx.egoSpawn
}

// EgoRoute 当前episode自车的道路序列，未规划或规划失败时为nil
func (ctx *Context) EgoRoute() []int32 {
	return ctx.egoRoute
}

// nextSeed 选择episode种子
// 说明：sequential模式按顺序循环遍历种子范围，否则在范围内随机选择
func (ctx *Context) nextSeed(episode int) int {
	start, num := ctx.scenario.SeedRange()
	if ctx.runtimeConfig.S.Sequential {
		return start + episode%num
	}
	return ctx.rand.SeedIn(start, num)
}

// ResetEpisode 开始新的episode
// 功能：加载场景、准备地图、初始化回放、确定自车出生落位并规划自车路径
// 参数：episode-episode序号
// 返回：场景配置片段，场景加载或地图构建失败时返回错误
func (ctx *Context) ResetEpisode(episode int) (*scenario.EpisodeConfig, error) {
	ctx.mapManager.Unload()
	seed := ctx.nextSeed(episode)
	cfg, err := ctx.scenario.Reset(context.Background(), seed, ctx.engineConfig)
	if err != nil {
		return nil, fmt.Errorf("episode %d (seed %d): %w", episode, seed, err)
	}
	m, err := ctx.mapManager.Reset(ctx.engineConfig)
	if err != nil {
		return nil, fmt.Errorf("episode %d (seed %d): %w", episode, seed, err)
	}
	ctx.clock.ResetEpisode(episode)
	ctx.replay = replay.NewManager(ctx.engineConfig.RealDataConfig.LocateInfo)
	ctx.agents = nil
	ctx.egoRoute = nil
	if ctx.egoSpawn, err = locateEgo(m, ctx.engineConfig.VehicleConfig); err != nil {
		log.Warnf("failed to locate ego: %v", err)
	}
	if ctx.runtimeConfig.C.PlanRoute {
		ctx.planEgoRoute(m)
	}
	log.Infof("episode %d: seed %d, log %s, %d replayed agents over %.1fs",
		episode, seed, cfg.LogID, ctx.replay.Len(), ctx.replay.Duration())
	return cfg, nil
}

// planEgoRoute 规划自车路径，失败只记录日志
func (ctx *Context) planEgoRoute(m entity.IMap) {
	r, ok := ctx.routers[m]
	if !ok {
		r = route.NewLocalRouter(m)
		ctx.routers[m] = r
	}
	v := ctx.engineConfig.VehicleConfig
	roads, err := r.PlanEgo(v.SpawnLaneIndex, v.DestinationNode, ctx.clock.T)
	if err != nil {
		log.Warnf("failed to plan ego route: %v", err)
		return
	}
	ctx.egoRoute = roads
}

// Close 关闭任务，释放sidecar、数据库连接等资源
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		if ctx.opts.StartSidecarServe {
			// wait for graceful stop
			<-ctx.sidecarCloseCh
		}
	}
	ctx.mapLoader.Close()
	ctx.closeStore()
}
