package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"yqhp/farm-submit/internal/descriptor"
	"yqhp/farm-submit/internal/jobfile"
	"yqhp/farm-submit/internal/submit"
)

var tileManifestDir string

// tileCmd 是 tile 子命令
var tileCmd = &cobra.Command{
	Use:   "tile <job.yml>",
	Short: "提交分块渲染批次",
	Long: `把作业文件的每一帧拆分为 N×M 分块作业，
并为每帧提交一个依赖对应分块作业的拼装作业。

作业文件必须包含 tile 段。`,
	Example: `  # 提交分块批次
  farm-submit tile job.yml

  # 指定拼装清单目录
  farm-submit tile --manifest-dir /tmp/manifests job.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runTile,
}

func init() {
	rootCmd.AddCommand(tileCmd)

	tileCmd.Flags().StringVar(&tileManifestDir, "manifest-dir", "", "拼装清单输出目录（默认 tile.output_dir）")
}

func runTile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jf, err := jobfile.ParseFile(args[0])
	if err != nil {
		return err
	}
	if jf.Tile == nil {
		return fmt.Errorf("作业文件 %s 缺少 tile 段", args[0])
	}

	job, err := jf.Descriptor()
	if err != nil {
		return err
	}
	applyDefaults(job, cfg)

	grid, err := jf.Grid()
	if err != nil {
		return err
	}
	files, err := jf.FrameFiles()
	if err != nil {
		return err
	}

	assembly := jf.AssemblyConfig()
	if jf.Tile.Assembler == "" {
		assembly.Plugin = cfg.Tile.Assembler
	}
	if jf.Tile.AssemblyPriority == nil {
		assembly.Priority = cfg.Tile.AssemblyPriority
	}

	manifestDir := tileManifestDir
	if manifestDir == "" {
		manifestDir = jf.Tile.OutputDir
	}

	batch := &submit.TileBatch{
		Grid:        grid,
		Base:        job,
		Plugin:      descriptor.PluginDescriptor(jf.PluginInfo),
		Assembly:    assembly,
		ManifestDir: manifestDir,
		Files:       toFrameFiles(files),
	}

	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	result, err := orch.SubmitTileBatch(context.Background(), batch)
	if err != nil {
		return err
	}

	frames := make([]int, 0, len(result.TileJobIDs))
	for frame := range result.TileJobIDs {
		frames = append(frames, frame)
	}
	sort.Ints(frames)
	for _, frame := range frames {
		fmt.Fprintf(cmd.OutOrStdout(), "frame %d: tile=%s assembly=%s\n",
			frame, result.TileJobIDs[frame], result.AssemblyJobIDs[frame])
	}
	printLatency(cmd, orch)
	return nil
}

func toFrameFiles(files []jobfile.TileFile) []submit.FrameFile {
	out := make([]submit.FrameFile, 0, len(files))
	for _, f := range files {
		out = append(out, submit.FrameFile{Frame: f.Frame, File: f.File, Prefix: f.Prefix})
	}
	return out
}
