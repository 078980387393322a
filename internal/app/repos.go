package app

import (
	"gorm.io/gorm"

	adrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/ad"
	convrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/conversation"
	msgrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/message"
	playerrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/player"
	teamrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/team"
	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

type Repos struct {
	User         userrepo.Repo
	Team         teamrepo.Repo
	Player       playerrepo.Repo
	Ad           adrepo.Repo
	Conversation convrepo.Repo
	Message      msgrepo.Repo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         userrepo.New(db, log),
		Team:         teamrepo.New(db, log),
		Player:       playerrepo.New(db, log),
		Ad:           adrepo.New(db, log),
		Conversation: convrepo.New(db, log),
		Message:      msgrepo.New(db, log),
	}
}
