package config

import "github.com/tsinghua-fib-lab/logreplay-sim/entity"

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，支持缓存机制
type InputPath struct {
	DB        string `yaml:"db,omitempty"`         // 数据库名
	Col       string `yaml:"col,omitempty"`        // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.pb
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件的完整路径
// 返回：缓存文件路径字符串
// 算法说明：
// 1. 如果指定了缓存路径，直接返回
// 2. 否则使用默认命名规则：{数据库名}.{集合名}.pb
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".pb"
}

// RecordInput 驾驶日志记录的来源
// 说明：Dir与DB/Col二选一，Dir优先
type RecordInput struct {
	Dir      string `yaml:"dir,omitempty"`       // 日志根目录，分区目录为{dir}/{partition}_parsed
	AgentPos string `yaml:"agent_pos,omitempty"` // 出生点覆盖文件目录，为空则不覆盖
	DB       string `yaml:"db,omitempty"`        // 数据库名
	Col      string `yaml:"col,omitempty"`       // 集合名
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义仿真系统的所有输入数据配置
// 说明：地图按城市名索引，每个城市一份完整地图，按需裁剪
type Input struct {
	URI     string               `yaml:"uri,omitempty"` // MongoDB连接字符串
	Maps    map[string]InputPath `yaml:"maps"`          // 城市名 -> 地图
	Records RecordInput          `yaml:"records"`       // 驾驶日志
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义单个episode的时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔
}

// Control 模拟器控制配置
type Control struct {
	Step      ControlStep `yaml:"step"`
	Episodes  int         `yaml:"episodes,omitempty"`   // 运行的episode数，0表示无限
	PlanRoute bool        `yaml:"plan_route,omitempty"` // 每个episode开始时为自车规划道路序列
}

// SingleScenario 固定单场景模式的参数
// 说明：单场景日志文件只含轨迹，地图与出生点由此处给出
type SingleScenario struct {
	LogID       string         `yaml:"log_id,omitempty"`
	City        string         `yaml:"city,omitempty"`
	Center      []float64      `yaml:"center,omitempty"`
	SpawnLane   entity.LaneRef `yaml:"spawn_lane,omitempty"`
	Destination entity.NodeRef `yaml:"destination,omitempty"`
}

// Scenario 场景加载配置
type Scenario struct {
	Mode       string         `yaml:"mode"`                  // single / multi / generalization
	Partition  string         `yaml:"partition,omitempty"`   // 数据分区（train / test）
	StartSeed  int            `yaml:"start_seed,omitempty"`  // 起始种子
	EpisodeNum int            `yaml:"episode_num,omitempty"` // 可选种子数，0表示分区内全部
	SeedOffset uint64         `yaml:"seed_offset,omitempty"` // 随机种子偏移量
	Sequential bool           `yaml:"sequential,omitempty"`  // 按顺序遍历种子，否则在范围内随机选择
	EgoID      string         `yaml:"ego_id,omitempty"`      // 自车在日志中的ID
	Freq       float64        `yaml:"freq,omitempty"`        // 轨迹采样频率（Hz）
	Radius     float64        `yaml:"radius,omitempty"`      // 地图裁剪半径（米）
	FlipCenter *bool          `yaml:"flip_center,omitempty"` // 是否对地图中心做坐标系转换，默认仅generalization模式开启
	Exclude    []string       `yaml:"exclude,omitempty"`     // 显式排除的日志ID
	Single     SingleScenario `yaml:"single,omitempty"`
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、控制、场景加载等所有配置项
type Config struct {
	Input    Input    `yaml:"input"`    // 输入
	Control  Control  `yaml:"control"`  // 模拟过程控制
	Scenario Scenario `yaml:"scenario"` // 场景加载
}
