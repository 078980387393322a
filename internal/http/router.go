package http

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/hittalaget/hittalaget-backend/internal/http/handlers"
	"github.com/hittalaget/hittalaget-backend/internal/http/middleware"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	ServiceName  string
	AllowOrigins []string

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	TeamHandler         *handlers.TeamHandler
	PlayerHandler       *handlers.PlayerHandler
	AdHandler           *handlers.AdHandler
	ConversationHandler *handlers.ConversationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.TraceContext())
	router.Use(middleware.RequestLog(cfg.Log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-Id"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)

		api.GET("/users/:username", cfg.UserHandler.GetByUsername)
		api.GET("/sports/:sport/teams", cfg.TeamHandler.List)
		api.GET("/sports/:sport/teams/:team_id", cfg.TeamHandler.Get)
		api.GET("/sports/:sport/players", cfg.PlayerHandler.ListAvailable)
		api.GET("/sports/:sport/players/:username", cfg.PlayerHandler.Get)
		api.GET("/sports/:sport/ads", cfg.AdHandler.List)
		api.GET("/sports/:sport/ads/:ad_id", cfg.AdHandler.Get)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/me", cfg.UserHandler.GetMe)
		protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		protected.PUT("/me/password", cfg.AuthHandler.ChangePassword)
		protected.DELETE("/me", cfg.UserHandler.DeleteMe)

		protected.POST("/teams", cfg.TeamHandler.Create)
		protected.GET("/sports/:sport/my-team", cfg.TeamHandler.GetMine)
		protected.PATCH("/sports/:sport/my-team", cfg.TeamHandler.UpdateMine)
		protected.DELETE("/sports/:sport/my-team", cfg.TeamHandler.DeleteMine)

		protected.POST("/players", cfg.PlayerHandler.Create)
		protected.PATCH("/sports/:sport/my-player", cfg.PlayerHandler.Update)
		protected.PATCH("/sports/:sport/my-player/availability", cfg.PlayerHandler.SetAvailability)
		protected.DELETE("/sports/:sport/my-player", cfg.PlayerHandler.Delete)
		protected.POST("/sports/:sport/my-player/history", cfg.PlayerHandler.AddHistory)
		protected.PATCH("/sports/:sport/my-player/history/:history_id", cfg.PlayerHandler.UpdateHistory)
		protected.DELETE("/sports/:sport/my-player/history/:history_id", cfg.PlayerHandler.DeleteHistory)

		protected.POST("/ads", cfg.AdHandler.Create)
		protected.GET("/sports/:sport/my-ads", cfg.AdHandler.ListMine)
		protected.PATCH("/sports/:sport/ads/:ad_id", cfg.AdHandler.Update)
		protected.DELETE("/sports/:sport/ads/:ad_id", cfg.AdHandler.Delete)
		protected.POST("/sports/:sport/ads/:ad_id/contact", cfg.ConversationHandler.ContactAdOwner)

		protected.GET("/conversations", cfg.ConversationHandler.List)
		protected.GET("/conversations/direct/:username", cfg.ConversationHandler.GetDirect)
		protected.POST("/conversations/direct/:username/messages", cfg.ConversationHandler.SendDirect)
		protected.DELETE("/conversations/direct/:username", cfg.ConversationHandler.LeaveDirect)
		protected.GET("/conversations/ad/:conversation_id", cfg.ConversationHandler.GetAd)
		protected.POST("/conversations/ad/:conversation_id/messages", cfg.ConversationHandler.PostAd)
		protected.DELETE("/conversations/ad/:conversation_id", cfg.ConversationHandler.LeaveAd)
	}

	return router
}

// SplitOrigins parses a comma separated origin list from configuration.
func SplitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
