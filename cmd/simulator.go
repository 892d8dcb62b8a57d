package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"yqhp/farm-submit/internal/simulator"
	"yqhp/farm-submit/pkg/logger"
)

var (
	simulatorAddr  string
	simulatorPools string
)

// simulatorCmd 是 simulator 子命令
var simulatorCmd = &cobra.Command{
	Use:   "simulator",
	Short: "启动本地农场模拟器",
	Long: `启动内存版农场 Web 服务，用于本地开发与联调。
作业保存在内存中，进程退出即丢失。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}

		opts := []simulator.Option{}
		if simulatorPools != "" {
			opts = append(opts, simulator.WithPools(splitNames(simulatorPools)...))
		}
		sim := simulator.New(opts...)

		errCh := make(chan error, 1)
		go func() {
			logger.Info("farm simulator listening on %s", simulatorAddr)
			errCh <- sim.App().Listen(simulatorAddr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			logger.Info("shutting down simulator")
			return sim.App().Shutdown()
		}
	},
}

func init() {
	rootCmd.AddCommand(simulatorCmd)

	simulatorCmd.Flags().StringVar(&simulatorAddr, "addr", ":8082", "监听地址")
	simulatorCmd.Flags().StringVar(&simulatorPools, "pools", "none,farm", "逗号分隔的 Pool 列表")
}

func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
