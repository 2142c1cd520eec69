package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"planbench/internal/handler"
	"planbench/internal/router"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 状态接口与 WebSocket 进度推送",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			hub := handler.NewHub()
			go hub.Run(ctx)
			svc.Runner.SetEmitter(hub.Publish)

			if port == 0 {
				port = svc.Config.Server.Port
			}
			addr := fmt.Sprintf(":%d", port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router.SetupRouter(ctx, svc, hub),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.Printf("服务启动在 %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("启动服务失败: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口（默认取配置 server.port）")
	return cmd
}
