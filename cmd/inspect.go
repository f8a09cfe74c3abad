package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"github.com/tsinghua-fib-lab/logreplay-sim/scenario"
	"github.com/tsinghua-fib-lab/logreplay-sim/task"
	"gopkg.in/yaml.v2"
)

var (
	// 查看的种子
	inspectSeed int
	// 是否同时构建地图
	inspectBuildMap bool
	// 离线命令的地图缓存地址
	offlineCacheDir string
)

// episodeSummary 场景配置的可读摘要
type episodeSummary struct {
	LogID          string    `yaml:"log_id"`
	Seed           int       `yaml:"seed"`
	City           string    `yaml:"city"`
	MapKey         string    `yaml:"map_key"`
	Center         []float64 `yaml:"center"`
	Radius         float64   `yaml:"radius"`
	SpawnLane      string    `yaml:"spawn_lane"`
	Destination    string    `yaml:"destination"`
	InitPos        []float64 `yaml:"init_pos"`
	InitSpeed      []float64 `yaml:"init_speed"`
	TrafficDensity float64   `yaml:"traffic_density"`
	Agents         []string  `yaml:"agents"`
	Lanes          int       `yaml:"lanes,omitempty"`
	Roads          int       `yaml:"roads,omitempty"`
	Junctions      int       `yaml:"junctions,omitempty"`
}

func summarize(seed int, cfg *scenario.EpisodeConfig) episodeSummary {
	agents := lo.Map(lo.Keys(cfg.RealData.LocateInfo), func(id entity.AgentID, _ int) string {
		return string(id)
	})
	slices.Sort(agents)
	return episodeSummary{
		LogID:          cfg.LogID,
		Seed:           seed,
		City:           cfg.Map.City,
		MapKey:         scenario.MapKey(cfg.Map.Center),
		Center:         []float64{cfg.Map.Center.X, cfg.Map.Center.Y},
		Radius:         cfg.Map.Radius,
		SpawnLane:      cfg.Vehicle.SpawnLaneIndex.String(),
		Destination:    string(cfg.Vehicle.DestinationNode),
		InitPos:        []float64{cfg.Vehicle.AgentInitPos.X, cfg.Vehicle.AgentInitPos.Y},
		InitSpeed:      []float64{cfg.Vehicle.AgentInitSpeed.X, cfg.Vehicle.AgentInitSpeed.Y},
		TrafficDensity: cfg.TrafficDensity,
		Agents:         agents,
	}
}

// inspect 加载种子对应的场景并输出YAML摘要
func inspect(w io.Writer, t *task.Context, seed int, buildMap bool) error {
	g := t.EngineConfig()
	cfg, err := t.Scenario().Reset(context.Background(), seed, g)
	if err != nil {
		return err
	}
	s := summarize(seed, cfg)
	if buildMap {
		m, err := t.Scenario().LoadMap(g)
		if err != nil {
			return err
		}
		s.Lanes = m.LaneManager().Len()
		s.Roads = m.RoadManager().Len()
		s.Junctions = m.JunctionManager().Len()
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// list 输出所有候选日志及其种子
func list(w io.Writer, t *task.Context) error {
	start, num := t.Scenario().SeedRange()
	ids := t.Scenario().IDs()
	for i, id := range ids {
		mark := ""
		if i >= start && i < start+num {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", i, id, mark); err != nil {
			return err
		}
	}
	return nil
}

func newOfflineContext() (*task.Context, error) {
	c, err := loadConfig(configPath, configData)
	if err != nil {
		return nil, err
	}
	return task.NewContext(task.Options{CacheDir: offlineCacheDir}, c, nil)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the scenario config built for a seed",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := newOfflineContext()
		if err != nil {
			return err
		}
		defer t.Close()
		return inspect(cmd.OutOrStdout(), t, inspectSeed, inspectBuildMap)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate log ids in seed order (* marks the active seed range)",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := newOfflineContext()
		if err != nil {
			return err
		}
		defer t.Close()
		return list(cmd.OutOrStdout(), t)
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectSeed, "seed", 0, "seed to inspect")
	inspectCmd.Flags().BoolVar(&inspectBuildMap, "map", false, "also build the map and print its size")
	inspectCmd.Flags().StringVar(&offlineCacheDir, "cache", "", "input cache dir path (empty means disable cache)")
	listCmd.Flags().StringVar(&offlineCacheDir, "cache", "", "input cache dir path (empty means disable cache)")
}
