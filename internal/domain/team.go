package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team is a club profile owned by a user. A user can hold at most one
// team per sport; TeamID is the public 6-digit identifier used in URLs.
type Team struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_team_user_sport,unique,priority:1" json:"user_id"`
	Sport  string    `gorm:"column:sport;not null;index:idx_team_user_sport,unique,priority:2;index" json:"sport"`

	TeamID int    `gorm:"column:team_id;not null;uniqueIndex" json:"team_id"`
	Name   string `gorm:"column:name;not null" json:"name"`
	Slug   string `gorm:"column:slug;not null;index" json:"slug"`

	Founded    int        `gorm:"column:founded;not null" json:"founded"`
	Home       string     `gorm:"column:home;not null" json:"home"`
	CityID     *uuid.UUID `gorm:"type:uuid;column:city_id;index" json:"city_id,omitempty"`
	Level      string     `gorm:"column:level;not null" json:"level"`
	Website    string     `gorm:"column:website;not null;default:''" json:"website,omitempty"`
	IsLooking  bool       `gorm:"column:is_looking;not null;default:false" json:"is_looking"`
	IsVerified bool       `gorm:"column:is_verified;not null;default:false" json:"is_verified"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Team) TableName() string { return "team" }
