package player

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

type Repo interface {
	Create(dbc dbctx.Context, row *domain.Player) (*domain.Player, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Player, error)
	GetByUsername(dbc dbctx.Context, sport, username string) (*domain.Player, error)
	GetByUserAndSport(dbc dbctx.Context, userID uuid.UUID, sport string) (*domain.Player, error)
	// HasProfile is the profile-existence check consumed by the
	// conversation controller before a player may contact an ad.
	HasProfile(dbc dbctx.Context, userID uuid.UUID, sport string) (bool, error)
	ListAvailableBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Player, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error

	AddHistory(dbc dbctx.Context, row *domain.PlayerHistory) (*domain.PlayerHistory, error)
	GetHistoryByID(dbc dbctx.Context, id uuid.UUID) (*domain.PlayerHistory, error)
	ListHistory(dbc dbctx.Context, playerID uuid.UUID) ([]*domain.PlayerHistory, error)
	UpdateHistoryFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteHistory(dbc dbctx.Context, id uuid.UUID) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "PlayerRepo")}
}

func (r *repo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *repo) Create(dbc dbctx.Context, row *domain.Player) (*domain.Player, error) {
	if row == nil {
		return nil, fmt.Errorf("missing player")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Player, error) {
	var out domain.Player
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByUsername(dbc dbctx.Context, sport, username string) (*domain.Player, error) {
	var out domain.Player
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("sport = ? AND username = ?", sport, username).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByUserAndSport(dbc dbctx.Context, userID uuid.UUID, sport string) (*domain.Player, error) {
	var out domain.Player
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("user_id = ? AND sport = ?", userID, sport).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) HasProfile(dbc dbctx.Context, userID uuid.UUID, sport string) (bool, error) {
	var count int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Player{}).
		Where("user_id = ? AND sport = ?", userID, sport).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListAvailableBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Player, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*domain.Player
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Player{}).
		Where("sport = ? AND is_available = ?", sport, true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Player{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)
	if err := txx.Where("player_id = ?", id).Delete(&domain.PlayerHistory{}).Error; err != nil {
		return err
	}
	return txx.Where("id = ?", id).Delete(&domain.Player{}).Error
}

func (r *repo) AddHistory(dbc dbctx.Context, row *domain.PlayerHistory) (*domain.PlayerHistory, error) {
	if row == nil {
		return nil, fmt.Errorf("missing history entry")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) GetHistoryByID(dbc dbctx.Context, id uuid.UUID) (*domain.PlayerHistory, error) {
	var out domain.PlayerHistory
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) ListHistory(dbc dbctx.Context, playerID uuid.UUID) ([]*domain.PlayerHistory, error) {
	var out []*domain.PlayerHistory
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.PlayerHistory{}).
		Where("player_id = ?", playerID).
		Order("start_year DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) UpdateHistoryFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.PlayerHistory{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) DeleteHistory(dbc dbctx.Context, id uuid.UUID) error {
	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&domain.PlayerHistory{}).Error
}
