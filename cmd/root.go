// Package cmd 提供 farm-submit CLI 的命令实现
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yqhp/farm-submit/internal/config"
	"yqhp/farm-submit/internal/farm"
	"yqhp/farm-submit/pkg/logger"
)

const (
	// Version 是当前版本号
	Version = "0.1.0"
)

var (
	// 全局配置
	cfgFile string
	debug   bool
	quiet   bool
)

// rootCmd 是根命令
var rootCmd = &cobra.Command{
	Use:   "farm-submit",
	Short: "渲染农场作业提交工具",
	Long: `farm-submit 将 YAML 作业文件提交到渲染农场：
支持作业依赖链（导出 → 渲染）、分块渲染（tile）与拼装作业。`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// 全局 flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "静默模式")

	// 禁用默认的 completion 命令
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader().WithConfigPath(cfgFile).Load()
	if err != nil {
		return nil, err
	}

	logCfg := &logger.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	}
	if debug {
		logCfg.Level = "debug"
	}
	if quiet {
		logCfg.Level = "error"
	}
	logger.Init(logCfg)
	return cfg, nil
}

// newFarmClient 根据配置创建农场客户端
func newFarmClient(cfg *config.Config) *farm.Client {
	return farm.NewClient(&farm.Config{
		URL:            cfg.Farm.URL,
		Username:       cfg.Farm.Username,
		Password:       cfg.Farm.Password,
		SkipTLSVerify:  cfg.Farm.SkipTLSVerify,
		RequestTimeout: cfg.Farm.RequestTimeout.Std(),
	})
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
