package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os/signal"
	"syscall"

	"planbench/internal/config"
	"planbench/internal/db"
	"planbench/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/config.yaml"

type globalFlags struct {
	configPath string
	envFile    string
}

// NewRootCmd 构建完整命令树。不带子命令时进入交互菜单
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "planbench",
		Short: "在远端求解服务上批量运行 PDDL 规划实验",
		Long: `planbench 对 planner × problem 矩阵逐个提交到远端求解服务，
轮询直到求解、失败或超时，并把结果与诊断信息写成 JSON 产物。

不带子命令运行时显示交互菜单。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(flags.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			return runMenu(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultConfigPath, "配置文件路径")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "环境变量文件（不存在时忽略）")

	root.AddCommand(
		newRunCmd(flags),
		newStatusCmd(flags),
		newBlacklistCmd(flags),
		newTimeoutCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// Execute 带信号处理地执行根命令
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return NewRootCmd().ExecuteContext(ctx)
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("加载 %s 失败: %w", path, err)
	}
	return nil
}

// buildServices 加载配置、打开台账并组装服务；返回的 cleanup 负责关闭数据库
func buildServices(flags *globalFlags) (*service.ServiceContext, func(), error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	cleanup := func() {
		if conn == nil {
			return
		}
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	svc, err := service.NewServiceContext(cfg, conn)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Printf("[CLI] 配置已加载: %d planners, %d problems", len(cfg.Planners), len(svc.Catalog.Problems()))
	return svc, cleanup, nil
}
