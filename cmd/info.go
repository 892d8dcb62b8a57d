package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"yqhp/farm-submit/internal/farm"
)

var infoNoNone bool

// listRunner 返回打印名称列表的命令执行函数
func listRunner(list func(*farm.Client, context.Context) ([]string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		names, err := list(newFarmClient(cfg), context.Background())
		if err != nil {
			return err
		}
		for _, name := range names {
			if infoNoNone && name == "none" {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}
}

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "列出农场 Pool",
	RunE: listRunner(func(c *farm.Client, ctx context.Context) ([]string, error) {
		return c.ListPools(ctx)
	}),
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "列出农场 Group",
	RunE: listRunner(func(c *farm.Client, ctx context.Context) ([]string, error) {
		return c.ListGroups(ctx)
	}),
}

var limitGroupsCmd = &cobra.Command{
	Use:   "limitgroups",
	Short: "列出农场 Limit Group",
	RunE: listRunner(func(c *farm.Client, ctx context.Context) ([]string, error) {
		return c.ListLimitGroups(ctx)
	}),
}

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "列出农场 Worker",
	RunE: listRunner(func(c *farm.Client, ctx context.Context) ([]string, error) {
		return c.ListWorkers(ctx)
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{poolsCmd, groupsCmd, limitGroupsCmd, workersCmd} {
		cmd.Flags().BoolVar(&infoNoNone, "no-none", false, "过滤 none 哨兵值")
		rootCmd.AddCommand(cmd)
	}
}
