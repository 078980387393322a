package app

import (
	"github.com/gin-gonic/gin"

	httpx "github.com/hittalaget/hittalaget-backend/internal/http"
	httpH "github.com/hittalaget/hittalaget-backend/internal/http/handlers"
	httpMW "github.com/hittalaget/hittalaget-backend/internal/http/middleware"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Team         *httpH.TeamHandler
	Player       *httpH.PlayerHandler
	Ad           *httpH.AdHandler
	Conversation *httpH.ConversationHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         httpH.NewAuthHandler(services.Auth),
		User:         httpH.NewUserHandler(services.User),
		Team:         httpH.NewTeamHandler(services.Team),
		Player:       httpH.NewPlayerHandler(services.Player),
		Ad:           httpH.NewAdHandler(services.Ad),
		Conversation: httpH.NewConversationHandler(services.Conversation),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.ServiceName,
		AllowOrigins:        cfg.AllowOrigins,
		AuthMiddleware:      middleware.Auth,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		TeamHandler:         handlers.Team,
		PlayerHandler:       handlers.Player,
		AdHandler:           handlers.Ad,
		ConversationHandler: handlers.Conversation,
	})
}
