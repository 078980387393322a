package domain

import (
	"time"

	"github.com/google/uuid"
)

type City struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (City) TableName() string { return "city" }

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Email    string    `gorm:"column:email;not null;uniqueIndex" json:"-"`
	Password string    `gorm:"column:password;not null" json:"-"`

	FirstName string     `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string     `gorm:"column:last_name;not null" json:"last_name"`
	Birthday  time.Time  `gorm:"column:birthday;not null" json:"birthday"`
	Height    *float64   `gorm:"column:height" json:"height,omitempty"`
	CityID    *uuid.UUID `gorm:"type:uuid;column:city_id;index" json:"city_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }
