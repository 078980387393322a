package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hittalaget/hittalaget-backend/internal/data/repos/testutil"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
)

func TestTeamServiceCreate(t *testing.T) {
	fx := newConvFixture(t)
	svc := NewTeamService(fx.db, testutil.Logger(t), fx.teams)
	owner := fx.seedUser(t, "clubowner")

	team, err := svc.Create(as(owner), TeamCreateInput{
		Sport:   "football",
		Name:    "Malmö FF",
		Founded: 1910,
		Home:    "Eleda Stadion",
		Level:   "top tier",
	})
	require.NoError(t, err)
	require.Equal(t, "malmo-ff", team.Slug)
	require.GreaterOrEqual(t, team.TeamID, 100000)
	require.LessOrEqual(t, team.TeamID, 999999)

	// One team per user and sport.
	_, err = svc.Create(as(owner), TeamCreateInput{
		Sport:   "football",
		Name:    "Second FC",
		Founded: 2001,
	})
	require.True(t, apierr.IsCode(err, apierr.CodeConflict))

	// Unknown sports are rejected through the registry.
	_, err = svc.Create(as(owner), TeamCreateInput{
		Sport:   "curling",
		Name:    "Ice FC",
		Founded: 2001,
	})
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	got, err := svc.GetByPublicID(as(owner), "football", team.TeamID)
	require.NoError(t, err)
	require.Equal(t, team.ID, got.ID)

	looking := true
	updated, err := svc.UpdateMine(as(owner), "football", TeamUpdateInput{IsLooking: &looking})
	require.NoError(t, err)
	require.True(t, updated.IsLooking)

	require.NoError(t, svc.DeleteMine(as(owner), "football"))
	_, err = svc.GetMine(as(owner), "football")
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}
