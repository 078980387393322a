package db

import (
	"gorm.io/gorm"

	"github.com/hittalaget/hittalaget-backend/internal/domain"
)

func (s *Service) AutoMigrateAll() error {
	return AutoMigrate(s.db)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.City{},
		&domain.User{},
		&domain.Team{},
		&domain.Player{},
		&domain.PlayerHistory{},
		&domain.Ad{},
		&domain.Conversation{},
		&domain.ConversationParticipant{},
		&domain.Message{},
	)
}
