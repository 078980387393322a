package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	adrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/ad"
	convrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/conversation"
	msgrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/message"
	playerrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/player"
	teamrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/team"
	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/data/repos/testutil"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/requestdata"
	"github.com/hittalaget/hittalaget-backend/internal/sports"
)

type convFixture struct {
	db      *gorm.DB
	users   userrepo.Repo
	teams   teamrepo.Repo
	players playerrepo.Repo
	ads     adrepo.Repo
	convs   convrepo.Repo
	msgs    msgrepo.Repo
	svc     ConversationService
}

func newConvFixture(t *testing.T) *convFixture {
	t.Helper()
	gdb := testutil.SQLiteDB(t)
	logg := testutil.Logger(t)

	fx := &convFixture{
		db:      gdb,
		users:   userrepo.New(gdb, logg),
		teams:   teamrepo.New(gdb, logg),
		players: playerrepo.New(gdb, logg),
		ads:     adrepo.New(gdb, logg),
		convs:   convrepo.New(gdb, logg),
		msgs:    msgrepo.New(gdb, logg),
	}
	fx.svc = NewConversationService(gdb, logg, fx.users, fx.players, fx.ads, fx.convs, fx.msgs)
	return fx
}

func (fx *convFixture) seedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	rows, err := fx.users.Create(dbctx.Context{Ctx: context.Background()}, []*domain.User{{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
	}})
	require.NoError(t, err)
	return rows[0]
}

// as builds a request context authenticated as the given user.
func as(u *domain.User) dbctx.Context {
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:   u.ID,
		Username: u.Username,
	})
	return dbctx.Context{Ctx: ctx}
}

func (fx *convFixture) seedAd(t *testing.T, owner *domain.User) *domain.Ad {
	t.Helper()
	team, err := fx.teams.Create(dbctx.Context{Ctx: context.Background()}, &domain.Team{
		ID:      uuid.New(),
		UserID:  owner.ID,
		Sport:   string(sports.Football),
		Name:    owner.Username + " FC",
		Founded: 1991,
		Home:    "Testville Arena",
		Level:   "division 4",
	})
	require.NoError(t, err)

	ad, err := fx.ads.Create(dbctx.Context{Ctx: context.Background()}, &domain.Ad{
		ID:            uuid.New(),
		TeamID:        team.ID,
		Sport:         string(sports.Football),
		Description:   "We need a striker for the spring season.",
		Positions:     "striker",
		MinExperience: "division 4",
	}, team.Name)
	require.NoError(t, err)

	loaded, err := fx.ads.GetByPublicID(dbctx.Context{Ctx: context.Background()}, ad.AdID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Team)
	return loaded
}

func (fx *convFixture) seedPlayerProfile(t *testing.T, u *domain.User) {
	t.Helper()
	_, err := fx.players.Create(dbctx.Context{Ctx: context.Background()}, &domain.Player{
		ID:             uuid.New(),
		UserID:         u.ID,
		Sport:          string(sports.Football),
		Username:       u.Username,
		Positions:      []byte(`["striker"]`),
		Foot:           "right",
		Experience:     "division 4",
		SpecialAbility: "pace",
	})
	require.NoError(t, err)
}

func TestSendDirectMessageCreatesConversation(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")
	bob := fx.seedUser(t, "bob")

	out, err := fx.svc.SendDirectMessage(as(alice), "bob", "hello bob")
	require.NoError(t, err)
	require.NotNil(t, out.Conversation)
	require.Equal(t, domain.ConversationKindDirect, out.Conversation.Kind)
	require.NotNil(t, out.Message)
	require.Equal(t, "hello bob", out.Message.Content)
	require.Equal(t, int64(1), out.Message.Seq)
	require.ElementsMatch(t, []string{"alice", "bob"}, out.Conversation.SnapshotNames())

	// Second send from either side reuses the same thread.
	out2, err := fx.svc.SendDirectMessage(as(bob), "alice", "hi alice")
	require.NoError(t, err)
	require.Equal(t, out.Conversation.ID, out2.Conversation.ID)
	require.Equal(t, int64(2), out2.Message.Seq)

	page, err := fx.svc.GetDirectConversation(as(alice), "bob")
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	require.Equal(t, "hello bob", page.Messages[0].Content)
	require.Equal(t, "hi alice", page.Messages[1].Content)
}

func TestSendDirectMessageToSelf(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")

	_, err := fx.svc.SendDirectMessage(as(alice), "alice", "hi me")
	require.True(t, apierr.IsCode(err, apierr.CodeSelfActionRejected))
	ae, ok := apierr.As(err)
	require.True(t, ok)
	require.Equal(t, "/conversations", ae.Redirect)
}

func TestSendDirectMessageUnknownTarget(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")

	_, err := fx.svc.SendDirectMessage(as(alice), "nosuchuser", "hello?")
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestSendDirectMessageUnauthenticated(t *testing.T) {
	fx := newConvFixture(t)
	fx.seedUser(t, "bob")

	_, err := fx.svc.SendDirectMessage(dbctx.Context{Ctx: context.Background()}, "bob", "hi")
	require.True(t, apierr.IsCode(err, apierr.CodeUnauthenticated))
}

func TestSendDirectMessageBlankContentDropped(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")
	fx.seedUser(t, "bob")

	out, err := fx.svc.SendDirectMessage(as(alice), "bob", "   \n\t ")
	require.NoError(t, err)
	require.NotNil(t, out.Conversation)
	require.Nil(t, out.Message)

	page, err := fx.svc.GetDirectConversation(as(alice), "bob")
	require.NoError(t, err)
	require.Empty(t, page.Messages)
}

func TestLeaveDirectConversationSoftThenRejoin(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")
	bob := fx.seedUser(t, "bob")

	out, err := fx.svc.SendDirectMessage(as(alice), "bob", "hello")
	require.NoError(t, err)
	convID := out.Conversation.ID

	require.NoError(t, fx.svc.LeaveDirectConversation(as(alice), "bob"))

	// The leaver no longer sees the thread; the other side still does,
	// with history intact.
	_, err = fx.svc.GetDirectConversation(as(alice), "bob")
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	page, err := fx.svc.GetDirectConversation(as(bob), "alice")
	require.NoError(t, err)
	require.Equal(t, convID, page.Conversation.ID)
	require.Len(t, page.Messages, 1)

	// Bob writing again pulls Alice back into the same thread.
	out2, err := fx.svc.SendDirectMessage(as(bob), "alice", "come back")
	require.NoError(t, err)
	require.Equal(t, convID, out2.Conversation.ID)

	page, err = fx.svc.GetDirectConversation(as(alice), "bob")
	require.NoError(t, err)
	require.Equal(t, convID, page.Conversation.ID)
	require.Len(t, page.Messages, 2)
}

func TestLeaveDirectConversationLastParticipantDeletes(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")
	bob := fx.seedUser(t, "bob")

	out, err := fx.svc.SendDirectMessage(as(alice), "bob", "hello")
	require.NoError(t, err)
	convID := out.Conversation.ID

	require.NoError(t, fx.svc.LeaveDirectConversation(as(alice), "bob"))
	require.NoError(t, fx.svc.LeaveDirectConversation(as(bob), "alice"))

	var convCount int64
	require.NoError(t, fx.db.Model(&domain.Conversation{}).Where("id = ?", convID).Count(&convCount).Error)
	require.Zero(t, convCount)

	var msgCount int64
	require.NoError(t, fx.db.Model(&domain.Message{}).Where("conversation_id = ?", convID).Count(&msgCount).Error)
	require.Zero(t, msgCount)
}

func TestLeaveDirectConversationMissing(t *testing.T) {
	fx := newConvFixture(t)
	alice := fx.seedUser(t, "alice")
	fx.seedUser(t, "bob")

	err := fx.svc.LeaveDirectConversation(as(alice), "bob")
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
	ae, ok := apierr.As(err)
	require.True(t, ok)
	require.Equal(t, "/conversations", ae.Redirect)
}

func TestContactAdOwner(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	player := fx.seedUser(t, "striker9")
	ad := fx.seedAd(t, owner)
	fx.seedPlayerProfile(t, player)

	out, err := fx.svc.ContactAdOwner(as(player), ad.AdID, "I am interested")
	require.NoError(t, err)
	conv := out.Conversation
	require.Equal(t, domain.ConversationKindAd, conv.Kind)
	require.True(t, conv.IsActive)
	require.NotNil(t, conv.PublicID)
	require.GreaterOrEqual(t, *conv.PublicID, 100000)
	require.LessOrEqual(t, *conv.PublicID, 999999)
	require.NotNil(t, conv.InitiatorID)
	require.Equal(t, player.ID, *conv.InitiatorID)
	require.ElementsMatch(t, []string{"clubowner", "striker9"}, conv.SnapshotNames())
	require.NotNil(t, out.Message)
	require.Equal(t, "I am interested", out.Message.Content)

	// Contacting again reuses the open thread.
	out2, err := fx.svc.ContactAdOwner(as(player), ad.AdID, "still interested")
	require.NoError(t, err)
	require.Equal(t, conv.ID, out2.Conversation.ID)

	page, err := fx.svc.GetAdConversation(as(owner), *conv.PublicID)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
}

func TestContactAdOwnerOwnAd(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	ad := fx.seedAd(t, owner)
	fx.seedPlayerProfile(t, owner)

	_, err := fx.svc.ContactAdOwner(as(owner), ad.AdID, "nice ad")
	require.True(t, apierr.IsCode(err, apierr.CodeSelfActionRejected))
	ae, _ := apierr.As(err)
	require.Contains(t, ae.Redirect, fmt.Sprintf("/%d/", ad.AdID))
}

func TestContactAdOwnerWithoutProfile(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	stranger := fx.seedUser(t, "stranger")
	ad := fx.seedAd(t, owner)

	_, err := fx.svc.ContactAdOwner(as(stranger), ad.AdID, "hi")
	require.True(t, apierr.IsCode(err, apierr.CodeProfileRequired))
	ae, _ := apierr.As(err)
	require.NotEmpty(t, ae.Redirect)
}

func TestContactAdOwnerUnknownAd(t *testing.T) {
	fx := newConvFixture(t)
	player := fx.seedUser(t, "striker9")
	fx.seedPlayerProfile(t, player)

	_, err := fx.svc.ContactAdOwner(as(player), 123456, "hello?")
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestPostAdMessageMembershipRequired(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	player := fx.seedUser(t, "striker9")
	outsider := fx.seedUser(t, "outsider")
	ad := fx.seedAd(t, owner)
	fx.seedPlayerProfile(t, player)

	out, err := fx.svc.ContactAdOwner(as(player), ad.AdID, "first")
	require.NoError(t, err)
	pubID := *out.Conversation.PublicID

	reply, err := fx.svc.PostAdMessage(as(owner), pubID, "come to tryouts")
	require.NoError(t, err)
	require.NotNil(t, reply.Message)
	require.Equal(t, int64(2), reply.Message.Seq)

	_, err = fx.svc.PostAdMessage(as(outsider), pubID, "me too")
	require.True(t, apierr.IsCode(err, apierr.CodeForbidden))

	_, err = fx.svc.PostAdMessage(as(owner), 999998, "anyone there")
	require.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestLeaveAdConversationClosesThread(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	player := fx.seedUser(t, "striker9")
	ad := fx.seedAd(t, owner)
	fx.seedPlayerProfile(t, player)

	out, err := fx.svc.ContactAdOwner(as(player), ad.AdID, "interested")
	require.NoError(t, err)
	pubID := *out.Conversation.PublicID

	require.NoError(t, fx.svc.LeaveAdConversation(as(owner), pubID))

	// The remaining participant sees a closed thread with a departure
	// notice appended by the leaver.
	page, err := fx.svc.GetAdConversation(as(player), pubID)
	require.NoError(t, err)
	require.False(t, page.Conversation.IsActive)
	last := page.Messages[len(page.Messages)-1]
	require.Equal(t, domain.MessageRoleSystem, last.Role)
	require.Equal(t, "clubowner left the conversation.", last.Content)

	// Posting into a closed thread yields a notice and appends nothing.
	posted, err := fx.svc.PostAdMessage(as(player), pubID, "wait")
	require.NoError(t, err)
	require.Nil(t, posted.Message)
	require.Equal(t, closedConversationNotice, posted.Notice)

	again, err := fx.svc.GetAdConversation(as(player), pubID)
	require.NoError(t, err)
	require.Len(t, again.Messages, len(page.Messages))

	// A fresh contact starts a new thread instead of reviving the
	// closed one.
	out2, err := fx.svc.ContactAdOwner(as(player), ad.AdID, "fresh start")
	require.NoError(t, err)
	require.NotEqual(t, out.Conversation.ID, out2.Conversation.ID)
	require.True(t, out2.Conversation.IsActive)

	// The leaver no longer sees the old thread.
	_, err = fx.svc.GetAdConversation(as(owner), pubID)
	require.True(t, apierr.IsCode(err, apierr.CodeForbidden))
}

func TestLeaveAdConversationLastParticipantDeletes(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	player := fx.seedUser(t, "striker9")
	ad := fx.seedAd(t, owner)
	fx.seedPlayerProfile(t, player)

	out, err := fx.svc.ContactAdOwner(as(player), ad.AdID, "interested")
	require.NoError(t, err)
	pubID := *out.Conversation.PublicID

	require.NoError(t, fx.svc.LeaveAdConversation(as(owner), pubID))
	require.NoError(t, fx.svc.LeaveAdConversation(as(player), pubID))

	var convCount int64
	require.NoError(t, fx.db.Model(&domain.Conversation{}).Where("id = ?", out.Conversation.ID).Count(&convCount).Error)
	require.Zero(t, convCount)

	var msgCount int64
	require.NoError(t, fx.db.Model(&domain.Message{}).Where("conversation_id = ?", out.Conversation.ID).Count(&msgCount).Error)
	require.Zero(t, msgCount)
}

func TestListConversationsSplitsKinds(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	alice := fx.seedUser(t, "alice")
	ad := fx.seedAd(t, owner)
	fx.seedPlayerProfile(t, alice)

	_, err := fx.svc.SendDirectMessage(as(alice), "clubowner", "hi direct")
	require.NoError(t, err)
	_, err = fx.svc.ContactAdOwner(as(alice), ad.AdID, "hi ad")
	require.NoError(t, err)

	lists, err := fx.svc.ListConversations(as(alice))
	require.NoError(t, err)
	require.Len(t, lists.Direct, 1)
	require.Len(t, lists.Ad, 1)
	require.Equal(t, domain.ConversationKindDirect, lists.Direct[0].Kind)
	require.Equal(t, domain.ConversationKindAd, lists.Ad[0].Kind)

	// Leaving the direct thread drops it from the leaver's inbox only.
	require.NoError(t, fx.svc.LeaveDirectConversation(as(alice), "clubowner"))
	lists, err = fx.svc.ListConversations(as(alice))
	require.NoError(t, err)
	require.Empty(t, lists.Direct)

	ownerLists, err := fx.svc.ListConversations(as(owner))
	require.NoError(t, err)
	require.Len(t, ownerLists.Direct, 1)
}

func TestAdConversationPublicIDsUnique(t *testing.T) {
	fx := newConvFixture(t)
	owner := fx.seedUser(t, "clubowner")
	ad := fx.seedAd(t, owner)

	seen := map[int]bool{}
	for i := 0; i < 20; i++ {
		u := fx.seedUser(t, fmt.Sprintf("player%02d", i))
		fx.seedPlayerProfile(t, u)
		out, err := fx.svc.ContactAdOwner(as(u), ad.AdID, "interested")
		require.NoError(t, err)
		pubID := *out.Conversation.PublicID
		require.GreaterOrEqual(t, pubID, 100000)
		require.LessOrEqual(t, pubID, 999999)
		require.False(t, seen[pubID], "public id %d issued twice", pubID)
		seen[pubID] = true
	}
}
