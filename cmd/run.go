package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tsinghua-fib-lab/logreplay-sim/task"
)

var (
	// 分布式模式syncer地址，如果设置为空则激活独立部署模式
	syncerAddr string
	// 模拟任务名
	job string
	// 本程序监听的gRPC地址
	grpcAddr string
	// 地图加载的缓存地址，设置为空则禁用缓存功能
	cacheDir string
	// prometheus指标监听地址，为空则不启动
	metricsAddr string
	// 心跳日志间隔步数
	heartbeatInterval int32
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run episodes against the simulation engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(configPath, configData)
		if err != nil {
			return err
		}
		log.Infof("%+v", c)

		if metricsAddr != "" {
			srv := serveMetrics(metricsAddr)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
			if err := waitForServerReady("http://"+metricsAddr+"/metrics", 10, 100*time.Millisecond); err != nil {
				return err
			}
		}

		sidecar := syncer.NewSidecar(task.SelfName, grpcAddr, syncerAddr)
		t, err := task.NewContext(task.Options{
			Job:               job,
			CacheDir:          cacheDir,
			HeartbeatInterval: heartbeatInterval,
			StartSidecarServe: true,
		}, c, sidecar)
		if err != nil {
			return err
		}
		return t.Run()
	},
}

// serveMetrics 启动prometheus指标服务
func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
	log.Infof("serve metrics at %s/metrics", addr)
	return srv
}

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for range retryCount {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

func init() {
	runCmd.Flags().StringVar(&syncerAddr, "syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	runCmd.Flags().StringVar(&job, "job", "job0", "the name of the whole simulation task")
	runCmd.Flags().StringVar(&grpcAddr, "listen", ":51102", "gRPC listening address")
	runCmd.Flags().StringVar(&cacheDir, "cache", "data/", "input cache dir path (empty means disable cache)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics.listen", "", "prometheus metrics listening address (empty means disabled), e.g. localhost:9102")
	runCmd.Flags().Int32Var(&heartbeatInterval, "log.heartbeat_interval", 100, "心跳日志间隔步数")
}
