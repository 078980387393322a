package services

import (
	"gorm.io/gorm"

	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"

	"github.com/google/uuid"
)

type UserUpdateInput struct {
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Height    *float64 `json:"height,omitempty"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*domain.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*domain.User, error)
	UpdateMe(dbc dbctx.Context, in UserUpdateInput) (*domain.User, error)
	DeleteMe(dbc dbctx.Context) error
}

type userService struct {
	db    *gorm.DB
	log   *logger.Logger
	users userrepo.Repo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, users userrepo.Repo) UserService {
	return &userService{db: db, log: baseLog.With("service", "UserService"), users: users}
}

func (us *userService) GetMe(dbc dbctx.Context) (*domain.User, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	rows, err := us.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, apierr.NotFound("user not found")
	}
	return rows[0], nil
}

func (us *userService) GetByUsername(dbc dbctx.Context, username string) (*domain.User, error) {
	user, err := us.users.GetByUsername(dbc, normalization.Username(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierr.NotFound("user not found")
	}
	return user, nil
}

func (us *userService) UpdateMe(dbc dbctx.Context, in UserUpdateInput) (*domain.User, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = normalization.ParseInputString(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = normalization.ParseInputString(*in.LastName)
	}
	if in.Height != nil {
		updates["height"] = *in.Height
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("nothing to update")
	}
	if err := us.users.UpdateFields(dbc, rd.UserID, updates); err != nil {
		return nil, err
	}
	return us.GetMe(dbc)
}

// DeleteMe removes the account and everything it owns. Migrations run
// without DB-level foreign keys, so the dependent rows go explicitly,
// teams-then-ads first. Conversations the user was in survive; only the
// membership rows disappear, matching a leave without notice.
func (us *userService) DeleteMe(dbc dbctx.Context) error {
	rd, err := caller(dbc)
	if err != nil {
		return err
	}
	return us.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		teamIDs := tx.Model(&domain.Team{}).Select("id").Where("user_id = ?", rd.UserID)
		if err := tx.Where("team_id IN (?)", teamIDs).Delete(&domain.Ad{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", rd.UserID).Delete(&domain.Team{}).Error; err != nil {
			return err
		}
		playerIDs := tx.Model(&domain.Player{}).Select("id").Where("user_id = ?", rd.UserID)
		if err := tx.Where("player_id IN (?)", playerIDs).Delete(&domain.PlayerHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", rd.UserID).Delete(&domain.Player{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", rd.UserID).Delete(&domain.ConversationParticipant{}).Error; err != nil {
			return err
		}
		return us.users.Delete(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, rd.UserID)
	})
}
