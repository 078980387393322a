package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hittalaget/hittalaget-backend/internal/data/repos/testutil"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
)

func newPlayerFixture(t *testing.T) (*convFixture, PlayerService) {
	t.Helper()
	fx := newConvFixture(t)
	return fx, NewPlayerService(fx.db, testutil.Logger(t), fx.players)
}

func TestPlayerServiceUpdateProfile(t *testing.T) {
	fx, svc := newPlayerFixture(t)
	user := fx.seedUser(t, "striker9")

	_, err := svc.CreateProfile(as(user), PlayerCreateInput{
		Sport:          "football",
		Positions:      []string{"striker"},
		Foot:           "right",
		Experience:     "division 4",
		SpecialAbility: "pace",
	})
	require.NoError(t, err)

	exp := "top tier"
	updated, err := svc.UpdateProfile(as(user), "football", PlayerUpdateInput{
		Positions:  []string{"goalkeeper", "defender"},
		Experience: &exp,
	})
	require.NoError(t, err)
	require.Equal(t, "top tier", updated.Experience)
	require.JSONEq(t, `["goalkeeper","defender"]`, string(updated.Positions))
	// Untouched fields keep their values.
	require.Equal(t, "right", updated.Foot)

	badFoot := "upside down"
	_, err = svc.UpdateProfile(as(user), "football", PlayerUpdateInput{Foot: &badFoot})
	require.True(t, apierr.IsCode(err, apierr.CodeValidationFailed))

	_, err = svc.UpdateProfile(as(user), "football", PlayerUpdateInput{})
	require.True(t, apierr.IsCode(err, apierr.CodeValidationFailed))

	stranger := fx.seedUser(t, "stranger")
	_, err = svc.UpdateProfile(as(stranger), "football", PlayerUpdateInput{Experience: &exp})
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestPlayerServiceHistoryUpdate(t *testing.T) {
	fx, svc := newPlayerFixture(t)
	user := fx.seedUser(t, "striker9")
	fx.seedPlayerProfile(t, user)

	entry, err := svc.AddHistory(as(user), "football", PlayerHistoryInput{
		StartYear: 2010,
		EndYear:   2014,
		TeamName:  "Malmö FF",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateHistory(as(user), "football", entry.ID, PlayerHistoryInput{
		StartYear: 2011,
		EndYear:   2015,
		TeamName:  "IFK Göteborg",
	})
	require.NoError(t, err)
	require.Equal(t, 2011, updated.StartYear)
	require.Equal(t, 2015, updated.EndYear)
	require.Equal(t, "IFK Göteborg", updated.TeamName)

	_, err = svc.UpdateHistory(as(user), "football", entry.ID, PlayerHistoryInput{
		StartYear: 2015,
		EndYear:   2011,
		TeamName:  "Backwards FC",
	})
	require.True(t, apierr.IsCode(err, apierr.CodeValidationFailed))

	// Another player cannot touch the entry.
	other := fx.seedUser(t, "keeper1")
	fx.seedPlayerProfile(t, other)
	_, err = svc.UpdateHistory(as(other), "football", entry.ID, PlayerHistoryInput{
		StartYear: 2011,
		EndYear:   2012,
		TeamName:  "Hijack FC",
	})
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	_, err = svc.UpdateHistory(as(user), "football", uuid.New(), PlayerHistoryInput{
		StartYear: 2011,
		EndYear:   2012,
		TeamName:  "Ghost FC",
	})
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	require.NoError(t, svc.DeleteHistory(as(user), "football", entry.ID))
	profile, err := svc.GetProfile(as(user), "football", "striker9")
	require.NoError(t, err)
	require.Empty(t, profile.History)
}
