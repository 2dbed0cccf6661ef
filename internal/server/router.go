package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-agent/internal/handlers"
)

type RouterConfig struct {
	LearningPathHandler *handlers.LearningPathHandler
	SSEHandler          *handlers.SSEHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/learning-paths", cfg.LearningPathHandler.Create)
		api.GET("/learning-paths/:traceId", cfg.LearningPathHandler.Get)
		api.GET("/learning-paths/:traceId/progress", cfg.LearningPathHandler.Progress)
		api.GET("/users/:userId/learning-paths", cfg.LearningPathHandler.ListByUser)
	}

	router.GET("/sse/stream", cfg.SSEHandler.Stream)

	return router
}
