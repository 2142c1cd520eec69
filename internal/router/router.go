package router

import (
	"context"

	"planbench/internal/handler"
	"planbench/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(ctx context.Context, svc *service.ServiceContext, hub *handler.Hub) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	experimentHandler := handler.NewExperimentHandler(ctx, svc)

	api := r.Group("/api")
	{
		api.GET("/status", experimentHandler.GetStatus)
		api.GET("/blacklist", experimentHandler.GetBlacklist)
		api.GET("/timeouts", experimentHandler.GetTimeout)
		api.GET("/timeouts/table", experimentHandler.ListTimeouts)
		api.GET("/domains", experimentHandler.ListDomains)
		api.GET("/results/:domain/:planner/:problem", experimentHandler.GetResult)

		// 台账
		runs := api.Group("/runs")
		{
			runs.GET("", experimentHandler.ListRuns)
			runs.GET("/:id/attempts", experimentHandler.ListAttempts)
		}

		api.POST("/experiments/run", experimentHandler.RunExperiments)

		if hub != nil {
			api.GET("/ws", hub.ServeWS)
		}
	}

	return r
}
