package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	playerrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/player"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
	"github.com/hittalaget/hittalaget-backend/internal/sports"
)

type PlayerCreateInput struct {
	Sport          string   `json:"sport"`
	Positions      []string `json:"positions"`
	Foot           string   `json:"foot"`
	Experience     string   `json:"experience"`
	SpecialAbility string   `json:"special_ability"`
}

type PlayerUpdateInput struct {
	Positions      []string `json:"positions,omitempty"`
	Foot           *string  `json:"foot,omitempty"`
	Experience     *string  `json:"experience,omitempty"`
	SpecialAbility *string  `json:"special_ability,omitempty"`
}

type PlayerHistoryInput struct {
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	TeamName  string `json:"team_name"`
}

// PlayerProfile bundles a player row with its club history for the
// public profile page.
type PlayerProfile struct {
	Player  *domain.Player          `json:"player"`
	History []*domain.PlayerHistory `json:"history"`
}

type PlayerService interface {
	CreateProfile(dbc dbctx.Context, in PlayerCreateInput) (*domain.Player, error)
	GetProfile(dbc dbctx.Context, sport, username string) (*PlayerProfile, error)
	ListAvailable(dbc dbctx.Context, sport string, limit int) ([]*domain.Player, error)
	UpdateProfile(dbc dbctx.Context, sport string, in PlayerUpdateInput) (*domain.Player, error)
	SetAvailability(dbc dbctx.Context, sport string, available bool) error
	DeleteProfile(dbc dbctx.Context, sport string) error

	AddHistory(dbc dbctx.Context, sport string, in PlayerHistoryInput) (*domain.PlayerHistory, error)
	UpdateHistory(dbc dbctx.Context, sport string, historyID uuid.UUID, in PlayerHistoryInput) (*domain.PlayerHistory, error)
	DeleteHistory(dbc dbctx.Context, sport string, historyID uuid.UUID) error
}

type playerService struct {
	db      *gorm.DB
	log     *logger.Logger
	players playerrepo.Repo
}

func NewPlayerService(db *gorm.DB, baseLog *logger.Logger, players playerrepo.Repo) PlayerService {
	return &playerService{db: db, log: baseLog.With("service", "PlayerService"), players: players}
}

func (ps *playerService) CreateProfile(dbc dbctx.Context, in PlayerCreateInput) (*domain.Player, error) {
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
	if !def.ValidFoot(in.Foot) {
		return nil, apierr.Validation(fmt.Sprintf("unknown foot %q", in.Foot))
	}
	if !def.ValidExperience(in.Experience) {
		return nil, apierr.Validation(fmt.Sprintf("unknown experience level %q", in.Experience))
	}
	if !def.ValidAbility(in.SpecialAbility) {
		return nil, apierr.Validation(fmt.Sprintf("unknown special ability %q", in.SpecialAbility))
	}
	positions, err := json.Marshal(in.Positions)
	if err != nil {
		return nil, fmt.Errorf("encode positions: %w", err)
	}

	var created *domain.Player
	err = ps.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		existing, err := ps.players.GetByUserAndSport(repoCtx, rd.UserID, sport)
		if err != nil {
			return err
		}
		if existing != nil {
			return apierr.Conflict("you already have a player profile for this sport")
		}
		row := &domain.Player{
			ID:             uuid.New(),
			UserID:         rd.UserID,
			Sport:          sport,
			Username:       rd.Username,
			Positions:      positions,
			Foot:           in.Foot,
			Experience:     in.Experience,
			SpecialAbility: in.SpecialAbility,
		}
		created, err = ps.players.Create(repoCtx, row)
		if apierr.IsDuplicateKey(err) {
			return apierr.Conflict("you already have a player profile for this sport")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ps *playerService) GetProfile(dbc dbctx.Context, sport, username string) (*PlayerProfile, error) {
	sport, err := requireSport(sport)
	if err != nil {
		return nil, err
	}
	player, err := ps.players.GetByUsername(dbc, sport, normalization.Username(username))
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apierr.NotFound("player not found")
	}
	history, err := ps.players.ListHistory(dbc, player.ID)
	if err != nil {
		return nil, err
	}
	return &PlayerProfile{Player: player, History: history}, nil
}

func (ps *playerService) ListAvailable(dbc dbctx.Context, sport string, limit int) ([]*domain.Player, error) {
	sport, err := requireSport(sport)
	if err != nil {
		return nil, err
	}
	return ps.players.ListAvailableBySport(dbc, sport, limit)
}

func (ps *playerService) mine(dbc dbctx.Context, sport string) (*domain.Player, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	sport, err = requireSport(sport)
	if err != nil {
		return nil, err
	}
	player, err := ps.players.GetByUserAndSport(dbc, rd.UserID, sport)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apierr.NotFound("player profile not found")
	}
	return player, nil
}

func (ps *playerService) UpdateProfile(dbc dbctx.Context, sport string, in PlayerUpdateInput) (*domain.Player, error) {
	player, err := ps.mine(dbc, sport)
	if err != nil {
		return nil, err
	}
	def, _ := sports.Lookup(sports.Sport(player.Sport))

	updates := map[string]interface{}{}
	if in.Positions != nil {
		if len(in.Positions) == 0 {
			return nil, apierr.Validation("at least one position is required")
		}
		for _, p := range in.Positions {
			if !def.ValidPosition(p) {
				return nil, apierr.Validation(fmt.Sprintf("unknown position %q", p))
			}
		}
		positions, err := json.Marshal(in.Positions)
		if err != nil {
			return nil, fmt.Errorf("encode positions: %w", err)
		}
		updates["positions"] = positions
	}
	if in.Foot != nil {
		if !def.ValidFoot(*in.Foot) {
			return nil, apierr.Validation(fmt.Sprintf("unknown foot %q", *in.Foot))
		}
		updates["foot"] = *in.Foot
	}
	if in.Experience != nil {
		if !def.ValidExperience(*in.Experience) {
			return nil, apierr.Validation(fmt.Sprintf("unknown experience level %q", *in.Experience))
		}
		updates["experience"] = *in.Experience
	}
	if in.SpecialAbility != nil {
		if !def.ValidAbility(*in.SpecialAbility) {
			return nil, apierr.Validation(fmt.Sprintf("unknown special ability %q", *in.SpecialAbility))
		}
		updates["special_ability"] = *in.SpecialAbility
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("nothing to update")
	}
	if err := ps.players.UpdateFields(dbc, player.ID, updates); err != nil {
		return nil, err
	}
	return ps.players.GetByID(dbc, player.ID)
}

func (ps *playerService) SetAvailability(dbc dbctx.Context, sport string, available bool) error {
	player, err := ps.mine(dbc, sport)
	if err != nil {
		return err
	}
	return ps.players.UpdateFields(dbc, player.ID, map[string]interface{}{"is_available": available})
}

func (ps *playerService) DeleteProfile(dbc dbctx.Context, sport string) error {
	player, err := ps.mine(dbc, sport)
	if err != nil {
		return err
	}
	return ps.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return ps.players.Delete(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, player.ID)
	})
}

func validateHistoryInput(in PlayerHistoryInput) (string, error) {
	year := time.Now().Year()
	if in.StartYear < 1900 || in.StartYear > year {
		return "", apierr.Validation("start year is out of range")
	}
	if in.EndYear < in.StartYear || in.EndYear > year {
		return "", apierr.Validation("end year is out of range")
	}
	teamName := normalization.ParseInputString(in.TeamName)
	if teamName == "" {
		return "", apierr.Validation("team name is required")
	}
	return teamName, nil
}

func (ps *playerService) AddHistory(dbc dbctx.Context, sport string, in PlayerHistoryInput) (*domain.PlayerHistory, error) {
	player, err := ps.mine(dbc, sport)
	if err != nil {
		return nil, err
	}
	teamName, err := validateHistoryInput(in)
	if err != nil {
		return nil, err
	}
	return ps.players.AddHistory(dbc, &domain.PlayerHistory{
		ID:        uuid.New(),
		PlayerID:  player.ID,
		StartYear: in.StartYear,
		EndYear:   in.EndYear,
		TeamName:  teamName,
	})
}

// ownHistory loads a history entry and verifies it belongs to the caller's
// profile for the sport.
func (ps *playerService) ownHistory(dbc dbctx.Context, sport string, historyID uuid.UUID) (*domain.PlayerHistory, error) {
	player, err := ps.mine(dbc, sport)
	if err != nil {
		return nil, err
	}
	entry, err := ps.players.GetHistoryByID(dbc, historyID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.PlayerID != player.ID {
		return nil, apierr.NotFound("history entry not found")
	}
	return entry, nil
}

func (ps *playerService) UpdateHistory(dbc dbctx.Context, sport string, historyID uuid.UUID, in PlayerHistoryInput) (*domain.PlayerHistory, error) {
	entry, err := ps.ownHistory(dbc, sport, historyID)
	if err != nil {
		return nil, err
	}
	teamName, err := validateHistoryInput(in)
	if err != nil {
		return nil, err
	}
	if err := ps.players.UpdateHistoryFields(dbc, entry.ID, map[string]interface{}{
		"start_year": in.StartYear,
		"end_year":   in.EndYear,
		"team_name":  teamName,
	}); err != nil {
		return nil, err
	}
	return ps.players.GetHistoryByID(dbc, entry.ID)
}

func (ps *playerService) DeleteHistory(dbc dbctx.Context, sport string, historyID uuid.UUID) error {
	entry, err := ps.ownHistory(dbc, sport, historyID)
	if err != nil {
		return err
	}
	return ps.players.DeleteHistory(dbc, entry.ID)
}
