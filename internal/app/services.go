package app

import (
	"gorm.io/gorm"

	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
	"github.com/hittalaget/hittalaget-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Team         services.TeamService
	Player       services.PlayerService
	Ad           services.AdService
	Conversation services.ConversationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:   services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:   services.NewUserService(db, log, repos.User),
		Team:   services.NewTeamService(db, log, repos.Team),
		Player: services.NewPlayerService(db, log, repos.Player),
		Ad:     services.NewAdService(db, log, repos.Team, repos.Ad),
		Conversation: services.NewConversationService(
			db, log,
			repos.User, repos.Player, repos.Ad, repos.Conversation, repos.Message,
		),
	}
}
