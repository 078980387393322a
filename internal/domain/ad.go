package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ad is a recruitment listing owned by a team. AdID is the public 6-digit
// identifier; Title and Slug are composed at creation from the team name
// and the wanted positions.
type Ad struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID uuid.UUID `gorm:"type:uuid;column:team_id;not null;index" json:"team_id"`

	AdID  int    `gorm:"column:ad_id;not null;uniqueIndex" json:"ad_id"`
	Title string `gorm:"column:title;not null" json:"title"`
	Slug  string `gorm:"column:slug;not null;index" json:"slug"`
	Sport string `gorm:"column:sport;not null;index" json:"sport"`

	Description    string `gorm:"column:description;type:text;not null" json:"description"`
	Positions      string `gorm:"column:positions;not null" json:"positions"`
	MinExperience  string `gorm:"column:min_experience;not null" json:"min_experience"`
	SpecialAbility string `gorm:"column:special_ability;not null" json:"special_ability"`

	Team *Team `gorm:"belongsTo;foreignKey:TeamID" json:"team,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Ad) TableName() string { return "ad" }
