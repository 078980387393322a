package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser   = "user"
	MessageRoleSystem = "system"
)

// Message is one append-only entry in a conversation's log. Messages are
// never updated; they are deleted only when their conversation is deleted.
// Seq is claimed from the conversation's counter at append time and gives
// a stable insertion order.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;column:conversation_id;not null;index;index:idx_message_conv_seq,unique,priority:1" json:"conversation_id"`

	AuthorID       uuid.UUID `gorm:"type:uuid;column:author_id;not null;index" json:"author_id"`
	AuthorUsername string    `gorm:"column:author_username;not null" json:"author_username"`
	Role           string    `gorm:"column:role;not null;default:'user'" json:"role"`

	Content string `gorm:"column:content;type:text;not null" json:"content"`
	Seq     int64  `gorm:"column:seq;not null;index:idx_message_conv_seq,unique,priority:2" json:"seq"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string { return "message" }
