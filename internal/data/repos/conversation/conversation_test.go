package conversation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hittalaget/hittalaget-backend/internal/data/repos/testutil"
	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
)

func seedUsers(t *testing.T, dbc dbctx.Context, users userrepo.Repo, names ...string) []*domain.User {
	t.Helper()
	rows := make([]*domain.User, 0, len(names))
	for _, name := range names {
		rows = append(rows, &domain.User{
			ID:        uuid.New(),
			Username:  name,
			Email:     name + "@example.com",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
		})
	}
	created, err := users.Create(dbc, rows)
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return created
}

func TestConversationRepoDirect(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	logg := testutil.Logger(t)

	repo := New(db, logg)
	users := userrepo.New(db, logg)
	seeded := seedUsers(t, dbc, users, "repo_alice", "repo_bob")
	alice, bob := seeded[0], seeded[1]

	conv, err := repo.CreateDirect(dbc, alice, bob)
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	if conv.Kind != domain.ConversationKindDirect {
		t.Fatalf("CreateDirect: kind = %q", conv.Kind)
	}
	if conv.DirectKey == nil || *conv.DirectKey != domain.DirectKeyFor(alice.ID, bob.ID) {
		t.Fatalf("CreateDirect: bad direct key %v", conv.DirectKey)
	}

	if err := repo.AddParticipants(dbc, conv, alice, bob); err != nil {
		t.Fatalf("AddParticipants: %v", err)
	}
	// Idempotent re-add.
	if err := repo.AddParticipants(dbc, conv, alice); err != nil {
		t.Fatalf("AddParticipants (again): %v", err)
	}
	count, err := repo.CountParticipants(dbc, conv.ID)
	if err != nil {
		t.Fatalf("CountParticipants: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountParticipants: got %d, want 2", count)
	}

	found, err := repo.FindDirect(dbc, alice.ID, "repo_bob")
	if err != nil {
		t.Fatalf("FindDirect: %v", err)
	}
	if found == nil || found.ID != conv.ID {
		t.Fatalf("FindDirect: got %+v", found)
	}

	// A second create for the same pair must hit the unique key. Runs in
	// a savepoint so the violation does not poison the outer test tx.
	dupErr := tx.Transaction(func(inner *gorm.DB) error {
		_, err := repo.CreateDirect(dbctx.Context{Ctx: context.Background(), Tx: inner}, bob, alice)
		return err
	})
	if dupErr == nil {
		t.Fatal("CreateDirect: expected duplicate key error for same pair")
	}

	if err := repo.RemoveParticipant(dbc, conv.ID, bob.ID); err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	// The snapshot still names bob, so alice can still address the thread.
	found, err = repo.FindDirect(dbc, alice.ID, "repo_bob")
	if err != nil {
		t.Fatalf("FindDirect after removal: %v", err)
	}
	if found == nil {
		t.Fatal("FindDirect after removal: thread should remain findable for the stayer")
	}
	// The leaver has no membership row and finds nothing.
	found, err = repo.FindDirect(dbc, bob.ID, "repo_alice")
	if err != nil {
		t.Fatalf("FindDirect as leaver: %v", err)
	}
	if found != nil {
		t.Fatal("FindDirect as leaver: expected no result")
	}

	if err := repo.Delete(dbc, conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.GetByDirectKey(dbc, domain.DirectKeyFor(alice.ID, bob.ID))
	if err != nil {
		t.Fatalf("GetByDirectKey after delete: %v", err)
	}
	if got != nil {
		t.Fatal("GetByDirectKey after delete: expected nil")
	}
}

func TestConversationRepoAd(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	logg := testutil.Logger(t)

	repo := New(db, logg)
	users := userrepo.New(db, logg)
	seeded := seedUsers(t, dbc, users, "repo_owner", "repo_player")
	owner, player := seeded[0], seeded[1]
	adRefID := uuid.New()

	conv, err := repo.CreateAd(dbc, player, owner, adRefID)
	if err != nil {
		t.Fatalf("CreateAd: %v", err)
	}
	if conv.PublicID == nil || *conv.PublicID < 100000 || *conv.PublicID > 999999 {
		t.Fatalf("CreateAd: public id %v out of range", conv.PublicID)
	}
	if !conv.IsActive {
		t.Fatal("CreateAd: should start active")
	}
	if err := repo.AddParticipants(dbc, conv, player, owner); err != nil {
		t.Fatalf("AddParticipants: %v", err)
	}

	found, err := repo.FindActiveAd(dbc, player.ID, adRefID)
	if err != nil {
		t.Fatalf("FindActiveAd: %v", err)
	}
	if found == nil || found.ID != conv.ID {
		t.Fatalf("FindActiveAd: got %+v", found)
	}

	if err := repo.SetActive(dbc, conv.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	found, err = repo.FindActiveAd(dbc, player.ID, adRefID)
	if err != nil {
		t.Fatalf("FindActiveAd (inactive): %v", err)
	}
	if found != nil {
		t.Fatal("FindActiveAd: inactive thread should not be found")
	}

	got, err := repo.GetByPublicID(dbc, *conv.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if got == nil || got.ID != conv.ID {
		t.Fatalf("GetByPublicID: got %+v", got)
	}

	lists, err := repo.ListAdByUser(dbc, player.ID)
	if err != nil {
		t.Fatalf("ListAdByUser: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != conv.ID {
		t.Fatalf("ListAdByUser: got %d rows", len(lists))
	}
}

// Runs on in-memory sqlite so the unique indexes are exercised without a
// postgres DSN.
func TestConversationRepoAdUniqueConstraints(t *testing.T) {
	db := testutil.SQLiteDB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	logg := testutil.Logger(t)

	repo := New(db, logg)
	users := userrepo.New(db, logg)
	seeded := seedUsers(t, dbc, users, "uniq_owner", "uniq_player")
	owner, player := seeded[0], seeded[1]
	adRefID := uuid.New()

	conv, err := repo.CreateAd(dbc, player, owner, adRefID)
	if err != nil {
		t.Fatalf("CreateAd: %v", err)
	}

	// A claimed public id cannot be persisted a second time.
	otherAd := uuid.New()
	initiatorID := player.ID
	dup := &domain.Conversation{
		ID:               uuid.New(),
		Kind:             domain.ConversationKindAd,
		PublicID:         conv.PublicID,
		AdRefID:          &otherAd,
		InitiatorID:      &initiatorID,
		IsActive:         true,
		ParticipantNames: datatypes.JSON(`["uniq_player","uniq_owner"]`),
	}
	if err := db.Create(dup).Error; !apierr.IsDuplicateKey(err) {
		t.Fatalf("insert with claimed public id: got %v, want duplicate key", err)
	}

	// Only one active thread per (ad, initiator) pair.
	if _, err := repo.CreateAd(dbc, player, owner, adRefID); !apierr.IsDuplicateKey(err) {
		t.Fatalf("second active thread for the pair: got %v, want duplicate key", err)
	}

	// Closing the thread frees the pair for a fresh contact.
	if err := repo.SetActive(dbc, conv.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	conv2, err := repo.CreateAd(dbc, player, owner, adRefID)
	if err != nil {
		t.Fatalf("CreateAd after close: %v", err)
	}
	if *conv2.PublicID == *conv.PublicID {
		t.Fatalf("CreateAd after close: public id %d reissued", *conv2.PublicID)
	}
}
