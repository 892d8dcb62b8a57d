package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"yqhp/farm-submit/internal/config"
	"yqhp/farm-submit/internal/descriptor"
	"yqhp/farm-submit/internal/jobfile"
	"yqhp/farm-submit/internal/submit"
)

var (
	// submit 命令的 flags
	submitPool     string
	submitPriority int
	submitFrames   string
	submitDryRun   bool
)

// submitCmd 是 submit 子命令
var submitCmd = &cobra.Command{
	Use:   "submit <job.yml>",
	Short: "提交作业文件",
	Long: `解析 YAML 作业文件并提交到农场。

作业文件包含 export 段时先提交导出作业，
渲染作业自动依赖导出作业的农场 ID。`,
	Example: `  # 基本提交
  farm-submit submit job.yml

  # 覆盖优先级与帧范围
  farm-submit submit --priority 80 --frames 1-10 job.yml

  # 只打印载荷不提交
  farm-submit submit --dry-run job.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitPool, "pool", "", "覆盖作业 Pool")
	submitCmd.Flags().IntVarP(&submitPriority, "priority", "p", -1, "覆盖作业优先级 (0-100)")
	submitCmd.Flags().StringVar(&submitFrames, "frames", "", "覆盖帧范围表达式")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "只打印提交载荷，不发送")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jf, err := jobfile.ParseFile(args[0])
	if err != nil {
		return err
	}

	job, err := jf.Descriptor()
	if err != nil {
		return err
	}
	applyOverrides(job)
	applyDefaults(job, cfg)

	render := submit.NewSubmission(job, descriptor.PluginDescriptor(jf.PluginInfo), jf.AuxFiles...)

	var chain []*submit.Submission
	export, err := jf.ExportDescriptor()
	if err != nil {
		return err
	}
	if export != nil {
		applyDefaults(export, cfg)
		chain = append(chain, submit.NewSubmission(export,
			descriptor.PluginDescriptor(jf.Export.PluginInfo), jf.Export.AuxFiles...))
	}
	chain = append(chain, render)

	if submitDryRun {
		return printPayloads(cmd, chain)
	}

	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	ids, err := orch.SubmitChain(context.Background(), chain...)
	if err != nil {
		return err
	}
	for i, id := range ids {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", chain[i].Job.Name, id)
	}
	printLatency(cmd, orch)
	return nil
}

// applyOverrides 应用命令行覆盖
func applyOverrides(job *descriptor.JobDescriptor) {
	if submitPool != "" {
		job.Pool = submitPool
	}
	if submitPriority >= 0 {
		job.SetPriority(submitPriority)
	}
	if submitFrames != "" {
		job.Frames = submitFrames
	}
}

// applyDefaults 用配置默认值补全描述符
func applyDefaults(job *descriptor.JobDescriptor, cfg *config.Config) {
	if job.Pool == "" {
		job.Pool = cfg.Defaults.Pool
	}
	if job.SecondaryPool == "" {
		job.SecondaryPool = cfg.Defaults.SecondaryPool
	}
	if job.Group == "" {
		job.Group = cfg.Defaults.Group
	}
	if job.Priority == nil {
		job.SetPriority(cfg.Defaults.Priority)
	}
	if job.ChunkSize == nil {
		job.SetChunkSize(cfg.Defaults.ChunkSize)
	}
}

// newOrchestrator 创建带可选预提交钩子的编排器
func newOrchestrator(cfg *config.Config) (*submit.Orchestrator, error) {
	opts := []submit.Option{}
	if cfg.Hooks.PreSubmit != "" {
		hook, err := submit.LoadHookFile(cfg.Hooks.PreSubmit)
		if err != nil {
			return nil, err
		}
		opts = append(opts, submit.WithHook(hook))
	}
	return submit.NewOrchestrator(newFarmClient(cfg), opts...), nil
}

// printPayloads 打印提交载荷（dry-run）
func printPayloads(cmd *cobra.Command, subs []*submit.Submission) error {
	for _, sub := range subs {
		if err := sub.Assemble(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(sub.Payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return nil
}

// printLatency 输出提交延迟统计
func printLatency(cmd *cobra.Command, orch *submit.Orchestrator) {
	if quiet {
		return
	}
	s := orch.LatencySummary()
	fmt.Fprintf(cmd.OutOrStdout(),
		"submissions: %d, latency p50=%dms p95=%dms max=%dms\n",
		s.Count, s.P50, s.P95, s.Max)
}
