package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

// Repo is the append-only message store. It validates content but does not
// check membership or the conversation's active state; both are the
// lifecycle controller's responsibility.
type Repo interface {
	Append(dbc dbctx.Context, convID uuid.UUID, author *domain.User, role, content string) (*domain.Message, error)
	ListFor(dbc dbctx.Context, convID uuid.UUID) ([]*domain.Message, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *repo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *repo) Append(dbc dbctx.Context, convID uuid.UUID, author *domain.User, role, content string) (*domain.Message, error) {
	if convID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation")
	}
	if author == nil {
		return nil, fmt.Errorf("missing author")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.Validation("message content required")
	}
	if role == "" {
		role = domain.MessageRoleUser
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)

	seq, err := claimSeq(txx, convID)
	if err != nil {
		return nil, err
	}
	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Role:           role,
		Content:        content,
		Seq:            seq,
		CreatedAt:      time.Now().UTC(),
	}
	if err := txx.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *repo) ListFor(dbc dbctx.Context, convID uuid.UUID) ([]*domain.Message, error) {
	if convID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation")
	}
	var out []*domain.Message
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", convID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// claimSeq increments the conversation's counter and reads the claimed
// value back. The increment is a single atomic UPDATE, which also takes
// the row lock that serializes concurrent appends on Postgres.
func claimSeq(txx *gorm.DB, convID uuid.UUID) (int64, error) {
	res := txx.Model(&domain.Conversation{}).
		Where("id = ?", convID).
		UpdateColumn("next_seq", gorm.Expr("next_seq + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("conversation %s not found", convID)
	}
	var seq int64
	if err := txx.Model(&domain.Conversation{}).
		Where("id = ?", convID).
		Pluck("next_seq", &seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}
