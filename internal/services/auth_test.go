package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/data/repos/testutil"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/requestdata"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	gdb := testutil.SQLiteDB(t)
	logg := testutil.Logger(t)
	users := userrepo.New(gdb, logg)
	return NewAuthService(gdb, logg, users, "test-secret", time.Hour)
}

func TestRegisterLoginRoundtrip(t *testing.T) {
	svc := newAuthService(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	user, err := svc.RegisterUser(dbc, RegisterInput{
		Username:  " Striker9 ",
		Email:     "Striker9@Example.com",
		Password:  "correct horse",
		FirstName: "Sam",
		LastName:  "Svensson",
		Birthday:  "1999-04-01",
	})
	require.NoError(t, err)
	require.Equal(t, "striker9", user.Username)
	require.NotEqual(t, "correct horse", user.Password)

	token, logged, err := svc.LoginUser(dbc, "striker9@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)
	rd := requestdata.GetRequestData(ctx)
	require.NotNil(t, rd)
	require.Equal(t, user.ID, rd.UserID)
	require.Equal(t, "striker9", rd.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	in := RegisterInput{
		Username: "taken",
		Email:    "one@example.com",
		Password: "password1",
		Birthday: "1990-01-01",
	}
	_, err := svc.RegisterUser(dbc, in)
	require.NoError(t, err)

	in.Email = "two@example.com"
	_, err = svc.RegisterUser(dbc, in)
	require.True(t, apierr.IsCode(err, apierr.CodeConflict))
}

func TestLoginBadPassword(t *testing.T) {
	svc := newAuthService(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := svc.RegisterUser(dbc, RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password1",
		Birthday: "1990-01-01",
	})
	require.NoError(t, err)

	_, _, err = svc.LoginUser(dbc, "bob@example.com", "wrong")
	require.True(t, apierr.IsCode(err, apierr.CodeUnauthenticated))

	_, _, err = svc.LoginUser(dbc, "nobody@example.com", "password1")
	require.True(t, apierr.IsCode(err, apierr.CodeUnauthenticated))
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	user, err := svc.RegisterUser(dbc, RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "old password",
		Birthday: "1990-01-01",
	})
	require.NoError(t, err)
	authed := dbctx.Context{Ctx: requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:   user.ID,
		Username: user.Username,
	})}

	err = svc.ChangePassword(authed, "wrong password", "new password")
	require.True(t, apierr.IsCode(err, apierr.CodeValidationFailed))

	err = svc.ChangePassword(authed, "old password", "short")
	require.True(t, apierr.IsCode(err, apierr.CodeValidationFailed))

	require.NoError(t, svc.ChangePassword(authed, "old password", "new password"))

	_, _, err = svc.LoginUser(dbc, "bob@example.com", "old password")
	require.True(t, apierr.IsCode(err, apierr.CodeUnauthenticated))
	_, logged, err := svc.LoginUser(dbc, "bob@example.com", "new password")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)

	err = svc.ChangePassword(dbc, "new password", "another password")
	require.True(t, apierr.IsCode(err, apierr.CodeUnauthenticated))
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.SetContextFromToken(context.Background(), "not-a-token")
	require.Error(t, err)
}
