package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// queryCmd 是 query 子命令
var queryCmd = &cobra.Command{
	Use:   "query <job-id>",
	Short: "查询作业状态",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		status, err := newFarmClient(cfg).GetJobStatus(context.Background(), args[0])
		if err != nil {
			return err
		}
		if status == nil {
			return fmt.Errorf("农场未找到作业 %s", args[0])
		}

		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
