package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	teamrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/team"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
	"github.com/hittalaget/hittalaget-backend/internal/sports"
)

type TeamCreateInput struct {
	Sport   string `json:"sport"`
	Name    string `json:"name"`
	Founded int    `json:"founded"`
	Home    string `json:"home"`
	Level   string `json:"level"`
	Website string `json:"website"`
}

type TeamUpdateInput struct {
	Home      *string `json:"home,omitempty"`
	Level     *string `json:"level,omitempty"`
	Website   *string `json:"website,omitempty"`
	IsLooking *bool   `json:"is_looking,omitempty"`
}

type TeamService interface {
	Create(dbc dbctx.Context, in TeamCreateInput) (*domain.Team, error)
	GetByPublicID(dbc dbctx.Context, sport string, teamID int) (*domain.Team, error)
	GetMine(dbc dbctx.Context, sport string) (*domain.Team, error)
	ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Team, error)
	UpdateMine(dbc dbctx.Context, sport string, in TeamUpdateInput) (*domain.Team, error)
	DeleteMine(dbc dbctx.Context, sport string) error
}

type teamService struct {
	db    *gorm.DB
	log   *logger.Logger
	teams teamrepo.Repo
}

func NewTeamService(db *gorm.DB, baseLog *logger.Logger, teams teamrepo.Repo) TeamService {
	return &teamService{db: db, log: baseLog.With("service", "TeamService"), teams: teams}
}

func requireSport(raw string) (string, error) {
	sport := normalization.ParseInputString(raw)
	if _, ok := sports.Lookup(sports.Sport(sport)); !ok {
		return "", apierr.NotFound("unknown sport")
	}
	return sport, nil
}

func (ts *teamService) Create(dbc dbctx.Context, in TeamCreateInput) (*domain.Team, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	sport, err := requireSport(in.Sport)
	if err != nil {
		return nil, err
	}
	name := normalization.ParseInputString(in.Name)
	if name == "" {
		return nil, apierr.Validation("team name is required")
	}
	if in.Founded < 1850 || in.Founded > time.Now().Year() {
		return nil, apierr.Validation("founded year is out of range")
	}

	var created *domain.Team
	err = ts.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		existing, err := ts.teams.GetByUserAndSport(repoCtx, rd.UserID, sport)
		if err != nil {
			return err
		}
		if existing != nil {
			return apierr.Conflict("you already have a team for this sport")
		}

		row := &domain.Team{
			ID:      uuid.New(),
			UserID:  rd.UserID,
			Sport:   sport,
			Name:    name,
			Founded: in.Founded,
			Home:    normalization.ParseInputString(in.Home),
			Level:   normalization.ParseInputString(in.Level),
			Website: normalization.ParseInputString(in.Website),
		}
		created, err = ts.teams.Create(repoCtx, row)
		if apierr.IsDuplicateKey(err) {
			return apierr.Conflict("you already have a team for this sport")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ts *teamService) GetByPublicID(dbc dbctx.Context, sport string, teamID int) (*domain.Team, error) {
	sport, err := requireSport(sport)
	if err != nil {
		return nil, err
	}
	team, err := ts.teams.GetByPublicID(dbc, sport, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apierr.NotFound("team not found")
	}
	return team, nil
}

func (ts *teamService) GetMine(dbc dbctx.Context, sport string) (*domain.Team, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	sport, err = requireSport(sport)
	if err != nil {
		return nil, err
	}
	team, err := ts.teams.GetByUserAndSport(dbc, rd.UserID, sport)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apierr.NotFound("team not found")
	}
	return team, nil
}

func (ts *teamService) ListBySport(dbc dbctx.Context, sport string, limit int) ([]*domain.Team, error) {
	sport, err := requireSport(sport)
	if err != nil {
		return nil, err
	}
	return ts.teams.ListBySport(dbc, sport, limit)
}

func (ts *teamService) UpdateMine(dbc dbctx.Context, sport string, in TeamUpdateInput) (*domain.Team, error) {
	team, err := ts.GetMine(dbc, sport)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Home != nil {
		updates["home"] = normalization.ParseInputString(*in.Home)
	}
	if in.Level != nil {
		updates["level"] = normalization.ParseInputString(*in.Level)
	}
	if in.Website != nil {
		updates["website"] = normalization.ParseInputString(*in.Website)
	}
	if in.IsLooking != nil {
		updates["is_looking"] = *in.IsLooking
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("nothing to update")
	}
	if err := ts.teams.UpdateFields(dbc, team.ID, updates); err != nil {
		return nil, err
	}
	return ts.teams.GetByID(dbc, team.ID)
}

func (ts *teamService) DeleteMine(dbc dbctx.Context, sport string) error {
	team, err := ts.GetMine(dbc, sport)
	if err != nil {
		return err
	}
	return ts.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return ts.teams.Delete(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, team.ID)
	})
}
