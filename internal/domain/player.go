package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Player is a per-sport player profile. Positions is a JSON list validated
// against the sport registry's choice set.
type Player struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_player_user_sport,unique,priority:1" json:"user_id"`
	Sport  string    `gorm:"column:sport;not null;index:idx_player_user_sport,unique,priority:2;index" json:"sport"`

	Username       string         `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Positions      datatypes.JSON `gorm:"type:jsonb;column:positions;not null;default:'[]'" json:"positions"`
	Foot           string         `gorm:"column:foot;not null" json:"foot"`
	Experience     string         `gorm:"column:experience;not null" json:"experience"`
	SpecialAbility string         `gorm:"column:special_ability;not null" json:"special_ability"`
	IsAvailable    bool           `gorm:"column:is_available;not null;default:false" json:"is_available"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Player) TableName() string { return "player" }

// PlayerHistory is one prior-club entry on a player profile.
type PlayerHistory struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID uuid.UUID `gorm:"type:uuid;column:player_id;not null;index" json:"player_id"`

	StartYear int    `gorm:"column:start_year;not null" json:"start_year"`
	EndYear   int    `gorm:"column:end_year;not null" json:"end_year"`
	TeamName  string `gorm:"column:team_name;not null" json:"team_name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PlayerHistory) TableName() string { return "player_history" }
