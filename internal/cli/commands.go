package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "运行所有缺失的实验",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			sum, err := svc.Runner.RunAll(cmd.Context())
			if sum != nil {
				printSummary(cmd.OutOrStdout(), sum)
			}
			return err
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "显示整体及各 planner 的完成情况",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			report := svc.Runner.Status()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func newBlacklistCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "blacklist",
		Short: "列出黑名单中的实验",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			printBlacklist(cmd.OutOrStdout(), svc.Registry.Entries())
			return nil
		},
	}
}

func newTimeoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "timeout <planner> <problem>",
		Short: "查询某个 (planner, problem) 的超时秒数",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			seconds := svc.Policy.GetTimeout(args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d seconds (%.1f minutes)\n", args[0], args[1], seconds, float64(seconds)/60)
			return nil
		},
	}
}
