package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	adrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/ad"
	teamrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/team"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
	"github.com/hittalaget/hittalaget-backend/internal/sports"
)

type AdCreateInput struct {
	Sport          string   `json:"sport"`
	Description    string   `json:"description"`
	Positions      []string `json:"positions"`
	MinExperience  string   `json:"min_experience"`
	SpecialAbility string   `json:"special_ability"`
}

type AdUpdateInput struct {
	Description   *string `json:"description,omitempty"`
	MinExperience *string `json:"min_experience,omitempty"`
}

type AdService interface {
	Create(dbc dbctx.Context, in AdCreateInput) (*domain.Ad, error)
	GetByPublicID(dbc dbctx.Context, sport string, adID int) (*domain.Ad, error)
	ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Ad, error)
	ListMine(dbc dbctx.Context, sport string) ([]*domain.Ad, error)
	Update(dbc dbctx.Context, sport string, adID int, in AdUpdateInput) (*domain.Ad, error)
	Delete(dbc dbctx.Context, sport string, adID int) error
}

type adService struct {
	db    *gorm.DB
	log   *logger.Logger
	teams teamrepo.Repo
	ads   adrepo.Repo
}

func NewAdService(db *gorm.DB, baseLog *logger.Logger, teams teamrepo.Repo, ads adrepo.Repo) AdService {
	return &adService{db: db, log: baseLog.With("service", "AdService"), teams: teams, ads: ads}
}

func (as *adService) Create(dbc dbctx.Context, in AdCreateInput) (*domain.Ad, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	sport, err := requireSport(in.Sport)
	if err != nil {
		return nil, err
	}
	def, _ := sports.Lookup(sports.Sport(sport))

	if len(in.Positions) == 0 {
		return nil, apierr.Validation("at least one position is required")
	}
	for _, p := range in.Positions {
		if !def.ValidPosition(p) {
			return nil, apierr.Validation(fmt.Sprintf("unknown position %q", p))
		}
	}
	if !def.ValidExperience(in.MinExperience) {
		return nil, apierr.Validation(fmt.Sprintf("unknown experience level %q", in.MinExperience))
	}
	if in.SpecialAbility != "" && !def.ValidAbility(in.SpecialAbility) {
		return nil, apierr.Validation(fmt.Sprintf("unknown special ability %q", in.SpecialAbility))
	}

	var created *domain.Ad
	err = as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		team, err := as.teams.GetByUserAndSport(repoCtx, rd.UserID, sport)
		if err != nil {
			return err
		}
		if team == nil {
			return apierr.ProfileRequired("/teams/new")
		}

		row := &domain.Ad{
			ID:             uuid.New(),
			TeamID:         team.ID,
			Sport:          sport,
			Description:    normalization.ParseInputString(in.Description),
			Positions:      strings.Join(in.Positions, ", "),
			MinExperience:  in.MinExperience,
			SpecialAbility: in.SpecialAbility,
		}
		created, err = as.ads.Create(repoCtx, row, team.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (as *adService) GetByPublicID(dbc dbctx.Context, sport string, adID int) (*domain.Ad, error) {
	sport, err := requireSport(sport)
	if err != nil {
		return nil, err
	}
	ad, err := as.ads.GetByPublicID(dbc, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil || ad.Sport != sport {
		return nil, apierr.NotFound("ad not found")
	}
	return ad, nil
}

func (as *adService) ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Ad, error) {
	sport, err := requireSport(sport)
	if err != nil {
		return nil, err
	}
	return as.ads.ListBySport(dbc, sport, limit)
}

func (as *adService) ListMine(dbc dbctx.Context, sport string) ([]*domain.Ad, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	sport, err = requireSport(sport)
	if err != nil {
		return nil, err
	}
	team, err := as.teams.GetByUserAndSport(dbc, rd.UserID, sport)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return []*domain.Ad{}, nil
	}
	return as.ads.ListByTeam(dbc, team.ID)
}

// owned loads an ad and verifies the caller owns the team behind it.
func (as *adService) owned(dbc dbctx.Context, sport string, adID int) (*domain.Ad, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	ad, err := as.GetByPublicID(dbc, sport, adID)
	if err != nil {
		return nil, err
	}
	if ad.Team == nil || ad.Team.UserID != rd.UserID {
		return nil, apierr.Forbidden("not your ad")
	}
	return ad, nil
}

func (as *adService) Update(dbc dbctx.Context, sport string, adID int, in AdUpdateInput) (*domain.Ad, error) {
	ad, err := as.owned(dbc, sport, adID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Description != nil {
		updates["description"] = normalization.ParseInputString(*in.Description)
	}
	if in.MinExperience != nil {
		def, _ := sports.Lookup(sports.Sport(ad.Sport))
		if !def.ValidExperience(*in.MinExperience) {
			return nil, apierr.Validation(fmt.Sprintf("unknown experience level %q", *in.MinExperience))
		}
		updates["min_experience"] = *in.MinExperience
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("nothing to update")
	}
	if err := as.ads.UpdateFields(dbc, ad.ID, updates); err != nil {
		return nil, err
	}
	return as.ads.GetByID(dbc, ad.ID)
}

func (as *adService) Delete(dbc dbctx.Context, sport string, adID int) error {
	ad, err := as.owned(dbc, sport, adID)
	if err != nil {
		return err
	}
	return as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return as.ads.Delete(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, ad.ID)
	})
}
