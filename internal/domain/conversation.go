package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ConversationKindDirect = "direct"
	ConversationKindAd     = "ad"
)

// Conversation holds both kinds of thread. A direct conversation is keyed
// by its unordered participant pair (DirectKey, unique); an ad conversation
// carries the ad reference, the requesting user and the active flag, and is
// addressed externally by its 6-digit PublicID.
//
// ParticipantNames is a growth-only snapshot of every username that was
// ever a participant. It is never shrunk when someone leaves; the
// participant rows are the authoritative membership set.
type Conversation struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind string    `gorm:"column:kind;not null;index" json:"kind"`

	// Direct kind only: sorted "userID|userID" pair key. Unique where set,
	// which also makes concurrent find-or-create safe.
	DirectKey *string `gorm:"column:direct_key;uniqueIndex" json:"-"`

	// Ad kind only. PublicID is unique where set, nil for direct threads.
	// The active (ad, initiator) pair is unique as well, so concurrent
	// contact attempts collapse onto one thread and the losing insert
	// surfaces as a duplicate-key error.
	PublicID    *int       `gorm:"column:public_id;uniqueIndex" json:"public_id,omitempty"`
	AdRefID     *uuid.UUID `gorm:"type:uuid;column:ad_ref_id;index;uniqueIndex:uniq_active_ad_contact,where:is_active,priority:1" json:"ad_id,omitempty"`
	InitiatorID *uuid.UUID `gorm:"type:uuid;column:initiator_id;uniqueIndex:uniq_active_ad_contact,where:is_active,priority:2" json:"initiator_id,omitempty"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`

	ParticipantNames datatypes.JSON `gorm:"type:jsonb;column:participant_names;not null;default:'[]'" json:"participant_names"`

	// Concurrency-safe per-conversation message sequencing.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"-"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

// SnapshotNames decodes the participant-name snapshot.
func (c *Conversation) SnapshotNames() []string {
	var names []string
	if len(c.ParticipantNames) > 0 {
		_ = json.Unmarshal(c.ParticipantNames, &names)
	}
	return names
}

// DirectKeyFor builds the canonical unordered pair key for two user ids.
func DirectKeyFor(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// ConversationParticipant is one row of a conversation's membership set.
// Adds are idempotent upserts and removals are targeted deletes so that
// concurrent membership changes cannot lose each other.
type ConversationParticipant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ConversationID uuid.UUID `gorm:"type:uuid;column:conversation_id;not null;index:idx_conv_participant,unique,priority:1" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_conv_participant,unique,priority:2;index" json:"user_id"`
	Username       string    `gorm:"column:username;not null" json:"username"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
}

func (ConversationParticipant) TableName() string { return "conversation_participant" }
