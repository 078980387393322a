package team

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hittalaget/hittalaget-backend/internal/data/repos/publicid"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

type Repo interface {
	// Create allocates the public 6-digit team id and the slug before the
	// first persist.
	Create(dbc dbctx.Context, row *domain.Team) (*domain.Team, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Team, error)
	GetByPublicID(dbc dbctx.Context, sport string, teamID int) (*domain.Team, error)
	GetByUserAndSport(dbc dbctx.Context, userID uuid.UUID, sport string) (*domain.Team, error)
	ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Team, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "TeamRepo")}
}

func (r *repo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *repo) Create(dbc dbctx.Context, row *domain.Team) (*domain.Team, error) {
	if row == nil {
		return nil, fmt.Errorf("missing team")
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)

	if row.TeamID == 0 {
		id, err := publicid.Free(txx, &domain.Team{}, "team_id")
		if err != nil {
			return nil, err
		}
		row.TeamID = id
	}
	if row.Slug == "" {
		row.Slug = normalization.Slugify(row.Name)
	}
	if err := txx.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Team, error) {
	var out domain.Team
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByPublicID(dbc dbctx.Context, sport string, teamID int) (*domain.Team, error) {
	var out domain.Team
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("sport = ? AND team_id = ?", sport, teamID).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByUserAndSport(dbc dbctx.Context, userID uuid.UUID, sport string) (*domain.Team, error) {
	var out domain.Team
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

func (r *repo) ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Team, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*domain.Team
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Team{}).
		Where("sport = ?", sport).
		Order("created_at DESC").
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
		Model(&domain.Team{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&domain.Team{}).Error
}
