package conversation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hittalaget/hittalaget-backend/internal/data/repos/publicid"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

// Repo is the conversation store. Creation goes through explicit factories
// that compute the pair key / public id before the first persist, so a
// plain save can never regenerate identifiers.
type Repo interface {
	// FindDirect returns the direct conversation where the caller is a
	// current participant and the target username appears in the name
	// snapshot. The membership join is authoritative; the snapshot narrows
	// the candidates and keeps the thread findable after the target left.
	FindDirect(dbc dbctx.Context, callerID uuid.UUID, targetUsername string) (*domain.Conversation, error)
	GetByDirectKey(dbc dbctx.Context, key string) (*domain.Conversation, error)
	FindActiveAd(dbc dbctx.Context, userID uuid.UUID, adRefID uuid.UUID) (*domain.Conversation, error)
	GetByPublicID(dbc dbctx.Context, pubID int) (*domain.Conversation, error)

	CreateDirect(dbc dbctx.Context, a, b *domain.User) (*domain.Conversation, error)
	CreateAd(dbc dbctx.Context, initiator, owner *domain.User, adRefID uuid.UUID) (*domain.Conversation, error)

	AddParticipants(dbc dbctx.Context, conv *domain.Conversation, users ...*domain.User) error
	RemoveParticipant(dbc dbctx.Context, convID, userID uuid.UUID) error
	IsParticipant(dbc dbctx.Context, convID, userID uuid.UUID) (bool, error)
	CountParticipants(dbc dbctx.Context, convID uuid.UUID) (int64, error)

	SetActive(dbc dbctx.Context, convID uuid.UUID, active bool) error
	// Delete hard-removes the conversation, its membership rows and all of
	// its messages.
	Delete(dbc dbctx.Context, convID uuid.UUID) error

	ListDirectByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	ListAdByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *repo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *repo) FindDirect(dbc dbctx.Context, callerID uuid.UUID, targetUsername string) (*domain.Conversation, error) {
	if callerID == uuid.Nil || targetUsername == "" {
		return nil, fmt.Errorf("missing caller or target")
	}
	// The LIKE on the serialized snapshot narrows the candidate set in SQL;
	// usernames are normalized lowercase so the quoted form is stable. The
	// decoded snapshot is still checked for an exact match.
	var candidates []*domain.Conversation
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Joins("JOIN conversation_participant cp ON cp.conversation_id = conversation.id AND cp.user_id = ?", callerID).
		Where("conversation.kind = ?", domain.ConversationKindDirect).
		Where("CAST(conversation.participant_names AS TEXT) LIKE ?", `%"`+targetUsername+`"%`).
		Preload("Participants").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	for _, c := range candidates {
		for _, name := range c.SnapshotNames() {
			if name == targetUsername {
				return c, nil
			}
		}
	}
	return nil, nil
}

func (r *repo) GetByDirectKey(dbc dbctx.Context, key string) (*domain.Conversation, error) {
	if key == "" {
		return nil, fmt.Errorf("missing direct key")
	}
	var out domain.Conversation
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Preload("Participants").
		Where("direct_key = ?", key).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) FindActiveAd(dbc dbctx.Context, userID uuid.UUID, adRefID uuid.UUID) (*domain.Conversation, error) {
	if userID == uuid.Nil || adRefID == uuid.Nil {
		return nil, fmt.Errorf("missing user or ad")
	}
	var out domain.Conversation
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Joins("JOIN conversation_participant cp ON cp.conversation_id = conversation.id AND cp.user_id = ?", userID).
		Where("conversation.kind = ? AND conversation.ad_ref_id = ? AND conversation.is_active = ?",
			domain.ConversationKindAd, adRefID, true).
		Preload("Participants").
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByPublicID(dbc dbctx.Context, pubID int) (*domain.Conversation, error) {
	if pubID == 0 {
		return nil, fmt.Errorf("missing public id")
	}
	var out domain.Conversation
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Preload("Participants").
		Where("kind = ? AND public_id = ?", domain.ConversationKindAd, pubID).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) CreateDirect(dbc dbctx.Context, a, b *domain.User) (*domain.Conversation, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("missing participants")
	}
	key := domain.DirectKeyFor(a.ID, b.ID)
	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:               uuid.New(),
		Kind:             domain.ConversationKindDirect,
		DirectKey:        &key,
		IsActive:         true,
		ParticipantNames: mustNames(a.Username, b.Username),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *repo) CreateAd(dbc dbctx.Context, initiator, owner *domain.User, adRefID uuid.UUID) (*domain.Conversation, error) {
	if initiator == nil || owner == nil {
		return nil, fmt.Errorf("missing participants")
	}
	if adRefID == uuid.Nil {
		return nil, fmt.Errorf("missing ad")
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)
	pubID, err := publicid.Free(txx, &domain.Conversation{}, "public_id")
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	initiatorID := initiator.ID
	conv := &domain.Conversation{
		ID:               uuid.New(),
		Kind:             domain.ConversationKindAd,
		PublicID:         &pubID,
		AdRefID:          &adRefID,
		InitiatorID:      &initiatorID,
		IsActive:         true,
		ParticipantNames: mustNames(initiator.Username, owner.Username),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := txx.Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

// AddParticipants unions users into the membership set and their usernames
// into the name snapshot. Membership rows are inserted with
// on-conflict-do-nothing so concurrent adds cannot lose each other; the
// snapshot only ever grows.
func (r *repo) AddParticipants(dbc dbctx.Context, conv *domain.Conversation, users ...*domain.User) error {
	if conv == nil {
		return fmt.Errorf("missing conversation")
	}
	if len(users) == 0 {
		return nil
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)

	now := time.Now().UTC()
	rows := make([]*domain.ConversationParticipant, 0, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		rows = append(rows, &domain.ConversationParticipant{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			UserID:         u.ID,
			Username:       u.Username,
			CreatedAt:      now,
		})
	}
	if err := txx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return err
	}

	// Touch the row before reading the snapshot: inside the caller's
	// transaction the update holds the conversation's row lock, so
	// concurrent snapshot unions serialize instead of overwriting each
	// other.
	if err := txx.Model(&domain.Conversation{}).
		Where("id = ?", conv.ID).
		Update("updated_at", now).Error; err != nil {
		return err
	}
	var current domain.Conversation
	if err := txx.Where("id = ?", conv.ID).Take(&current).Error; err != nil {
		return err
	}
	names := current.SnapshotNames()
	grown := false
	for _, u := range users {
		if u == nil || containsName(names, u.Username) {
			continue
		}
		names = append(names, u.Username)
		grown = true
	}
	if grown {
		raw, err := json.Marshal(names)
		if err != nil {
			return err
		}
		if err := txx.Model(&domain.Conversation{}).
			Where("id = ?", conv.ID).
			Update("participant_names", datatypes.JSON(raw)).Error; err != nil {
			return err
		}
		conv.ParticipantNames = datatypes.JSON(raw)
	}
	return nil
}

func (r *repo) RemoveParticipant(dbc dbctx.Context, convID, userID uuid.UUID) error {
	if convID == uuid.Nil || userID == uuid.Nil {
		return fmt.Errorf("missing conversation or user")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Delete(&domain.ConversationParticipant{}).Error
}

func (r *repo) IsParticipant(dbc dbctx.Context, convID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) CountParticipants(dbc dbctx.Context, convID uuid.UUID) (int64, error) {
	var count int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ?", convID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) SetActive(dbc dbctx.Context, convID uuid.UUID, active bool) error {
	if convID == uuid.Nil {
		return fmt.Errorf("missing conversation")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", convID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) Delete(dbc dbctx.Context, convID uuid.UUID) error {
	if convID == uuid.Nil {
		return fmt.Errorf("missing conversation")
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)
	if err := txx.Where("conversation_id = ?", convID).Delete(&domain.Message{}).Error; err != nil {
		return err
	}
	if err := txx.Where("conversation_id = ?", convID).Delete(&domain.ConversationParticipant{}).Error; err != nil {
		return err
	}
	return txx.Where("id = ?", convID).Delete(&domain.Conversation{}).Error
}

func (r *repo) ListDirectByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	return r.listByUser(dbc, userID, domain.ConversationKindDirect)
}

func (r *repo) ListAdByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	return r.listByUser(dbc, userID, domain.ConversationKindAd)
}

func (r *repo) listByUser(dbc dbctx.Context, userID uuid.UUID, kind string) ([]*domain.Conversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user")
	}
	var out []*domain.Conversation
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Joins("JOIN conversation_participant cp ON cp.conversation_id = conversation.id AND cp.user_id = ?", userID).
		Where("conversation.kind = ?", kind).
		Order("conversation.updated_at DESC").
		Preload("Participants").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func mustNames(names ...string) datatypes.JSON {
	raw, _ := json.Marshal(names)
	return datatypes.JSON(raw)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
