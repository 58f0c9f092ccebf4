// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corphon/ReelBoard/internal/utils"
)

// RouterConfig carries what SetupRouter needs besides the handler
type RouterConfig struct {
	DebugMode   bool
	CORSOrigins []string
	Metrics     *utils.APIMetrics
}

// SetupRouter 配置HTTP路由
func SetupRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(cfg.Metrics))
	r.Use(CORSMiddleware(cfg.CORSOrigins))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// WebSocket 支持
	r.GET("/ws/projects/:projectId", handler.ProjectWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/music-tracks", handler.ListMusicTracks)

		api.POST("/generate-script", handler.GenerateScript)
		api.POST("/generate-images", handler.GenerateImages)
		api.POST("/regenerate-image/:projectId/:sceneId", handler.RegenerateImage)

		projectsGroup := api.Group("/projects")
		{
			projectsGroup.GET("", handler.ListProjects)
			projectsGroup.GET("/:projectId", handler.GetProject)
			projectsGroup.PATCH("/:projectId/script", handler.UpdateScript)
			projectsGroup.PATCH("/:projectId/scenes/:sceneId/duration", handler.UpdateSceneDuration)
		}
	}

	return r
}
