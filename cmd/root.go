package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径
	configPath string
	// 配置文件Base64编码后的数据
	configData string
	// 日志级别
	logLevel string

	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}

	log = logrus.WithField("module", "logreplay")
)

// rootCmd 命令行根命令
// 功能：设置日志格式与级别，子命令共享配置参数
var rootCmd = &cobra.Command{
	Use:   "logreplay",
	Short: "Replay real-world driving logs as simulation episodes",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logrus.SetFormatter(&easy.Formatter{
			TimestampFormat: "2006-01-02 15:04:05.0000",
			LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
		})
		level, ok := logLevels[logLevel]
		if !ok {
			return fmt.Errorf("log.level must be one of %v", logLevels)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// loadConfig 读取并严格解析配置
// 功能：从文件或Base64编码数据读取YAML配置
// 参数：path-配置文件路径，data-Base64编码的配置（path为空时使用）
// 返回：配置对象
func loadConfig(path, data string) (config.Config, error) {
	var c config.Config
	var file []byte
	var err error
	if path != "" {
		if file, err = os.ReadFile(path); err != nil {
			return c, fmt.Errorf("config file load err: %w", err)
		}
	} else if data != "" {
		if file, err = base64.StdEncoding.DecodeString(data); err != nil {
			return c, fmt.Errorf("config data load err: %w", err)
		}
	} else {
		return c, errors.New("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		return c, fmt.Errorf("config file load err: %w", err)
	}
	return c, nil
}

// Execute 执行命令行
// 功能：解析参数并运行子命令，失败时以非零状态退出
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&configData, "config-data", "", "config file base64 encoded data")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(inspectCmd)
}
