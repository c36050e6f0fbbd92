package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"commentflow.app/engine/internal/http/handler"
	"commentflow.app/engine/internal/http/middleware"
	"commentflow.app/engine/internal/service"
)

type RouterConfig struct {
	FrontendURL  string
	SessionTTL   time.Duration
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authService := services.Auth()
	authHandler := handler.NewAuthHandler(authService, services.Channels(), cfg.FrontendURL, cfg.SessionTTL, cfg.IsProduction)
	AuthRouter(router, authHandler)

	youtubeHandler := handler.NewYouTubeHandler(services.Channels(), services.Comments(), services.Stats())
	authorized := router.Group("/", middleware.RequireAuth(authService))
	{
		authorized.GET("/me", authHandler.Me)
		YouTubeRouter(authorized.Group("/youtube"), youtubeHandler)
	}
}

func AuthRouter(router *gin.Engine, h *handler.AuthHandler) {
	auth := router.Group("/auth")
	{
		auth.GET("/google", h.Login)
		auth.GET("/google/callback", h.Callback)
	}
	router.POST("/logout", h.Logout)
}

func YouTubeRouter(rg *gin.RouterGroup, h *handler.YouTubeHandler) {
	rg.GET("/videos", h.Videos)
	rg.GET("/comments/:video_id", h.Comments)
	rg.GET("/video-stats/:video_id", h.VideoStats)
	rg.POST("/comments/reply", h.Reply)
	rg.POST("/comments/delete", h.Delete)
	rg.POST("/comments/rate", h.Rate)
	rg.POST("/comments/retry", h.Retry)
	rg.GET("/stats", h.Stats)
	rg.GET("/weekly-stats", h.WeeklyStats)
}
