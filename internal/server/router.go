package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/handlers"
	"github.com/mkarlin/chatdeck-backend/internal/middleware"
)

type RouterConfig struct {
	Server            config.ServerConfig
	AuthMiddleware    *middleware.AuthMiddleware
	AuthHandler       *handlers.AuthHandler
	AssistantHandler  *handlers.AssistantHandler
	ChatHandler       *handlers.ChatHandler
	DocumentHandler   *handlers.DocumentHandler
	VoteHandler       *handlers.VoteHandler
	SuggestionHandler *handlers.SuggestionHandler
	SSEHandler        *handlers.SSEHandler
	AvatarHandler     *handlers.AvatarHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Public
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/guest", cfg.AuthHandler.Guest)
		api.GET("/avatar", cfg.AvatarHandler.Get)

		// Session-optional: anonymous callers get replies without
		// persistence.
		api.POST("/assistant", cfg.AuthMiddleware.OptionalAuth(), cfg.AssistantHandler.Send)

		protected := api.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		{
			protected.GET("/history", cfg.ChatHandler.History)
			protected.GET("/chat", cfg.ChatHandler.Get)
			protected.DELETE("/chat", cfg.ChatHandler.Delete)
			protected.GET("/stream", cfg.ChatHandler.Stream)

			protected.GET("/document", cfg.DocumentHandler.Get)
			protected.POST("/document", cfg.DocumentHandler.Save)
			protected.DELETE("/document", cfg.DocumentHandler.DeleteAfter)

			protected.GET("/vote", cfg.VoteHandler.List)
			protected.PATCH("/vote", cfg.VoteHandler.Cast)

			protected.POST("/suggestions", cfg.SuggestionHandler.Create)
			protected.GET("/suggestions", cfg.SuggestionHandler.List)
			protected.PATCH("/suggestions", cfg.SuggestionHandler.Resolve)
		}

		// EventSource cannot set an Authorization header, so this route
		// alone accepts the token as a query parameter.
		api.GET("/sse/artifact", cfg.AuthMiddleware.RequireAuthFromQuery(), cfg.SSEHandler.ArtifactStream)
	}

	return router
}
