package ad

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
	// Create composes the title and slug and allocates the public 6-digit
	// ad id before the first persist.
	Create(dbc dbctx.Context, row *domain.Ad, teamName string) (*domain.Ad, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Ad, error)
	// GetByPublicID loads the ad with its owning team, which callers need
	// for the owner identity and the sport.
	GetByPublicID(dbc dbctx.Context, adID int) (*domain.Ad, error)
	ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Ad, error)
	ListByTeam(dbc dbctx.Context, teamID uuid.UUID) ([]*domain.Ad, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) Repo {
	return &repo{db: db, log: log.With("repo", "AdRepo")}
}

func (r *repo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *repo) Create(dbc dbctx.Context, row *domain.Ad, teamName string) (*domain.Ad, error) {
	if row == nil {
		return nil, fmt.Errorf("missing ad")
	}
	txx := r.tx(dbc).WithContext(dbc.Ctx)

	row.Title = fmt.Sprintf("%s is looking for %s", teamName, row.Positions)
	row.Slug = normalization.Slugify(row.Title)
	if row.AdID == 0 {
		id, err := publicid.Free(txx, &domain.Ad{}, "ad_id")
		if err != nil {
			return nil, err
		}
		row.AdID = id
	}
	if err := txx.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Ad, error) {
	var out domain.Ad
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByPublicID(dbc dbctx.Context, adID int) (*domain.Ad, error) {
	var out domain.Ad
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Preload("Team").
		Where("ad_id = ?", adID).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Ad, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*domain.Ad
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Ad{}).
		Where("sport = ?", sport).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ListByTeam(dbc dbctx.Context, teamID uuid.UUID) ([]*domain.Ad, error) {
	var out []*domain.Ad
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Ad{}).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
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
		Model(&domain.Ad{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&domain.Ad{}).Error
}
