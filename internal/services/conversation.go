package services

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	adrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/ad"
	convrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/conversation"
	msgrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/message"
	playerrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/player"
	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
	"github.com/hittalaget/hittalaget-backend/internal/requestdata"
)

const closedConversationNotice = "This conversation is closed."

// ConversationLists is the two-sided inbox: direct threads and ad threads
// are separate collections.
type ConversationLists struct {
	Direct []*domain.Conversation `json:"direct"`
	Ad     []*domain.Conversation `json:"ad"`
}

// ConversationPage is a conversation with its full message log.
type ConversationPage struct {
	Conversation *domain.Conversation `json:"conversation"`
	Messages     []*domain.Message    `json:"messages"`
}

// PostOutcome reports what a post attempt did. Message is nil when the
// content failed validation (dropped, not an error) or when the
// conversation is closed, in which case Notice is set.
type PostOutcome struct {
	Conversation *domain.Conversation `json:"conversation"`
	Message      *domain.Message      `json:"message,omitempty"`
	Notice       string               `json:"notice,omitempty"`
}

// ConversationService is the lifecycle controller for both conversation
// kinds. Every operation checks its preconditions in a fixed order and
// runs its lookup-or-create, membership mutation and message append inside
// one transaction.
type ConversationService interface {
	SendDirectMessage(dbc dbctx.Context, targetUsername, content string) (*PostOutcome, error)
	LeaveDirectConversation(dbc dbctx.Context, targetUsername string) error
	ContactAdOwner(dbc dbctx.Context, adPublicID int, content string) (*PostOutcome, error)
	PostAdMessage(dbc dbctx.Context, convPublicID int, content string) (*PostOutcome, error)
	LeaveAdConversation(dbc dbctx.Context, convPublicID int) error

	ListConversations(dbc dbctx.Context) (*ConversationLists, error)
	GetDirectConversation(dbc dbctx.Context, targetUsername string) (*ConversationPage, error)
	GetAdConversation(dbc dbctx.Context, convPublicID int) (*ConversationPage, error)
}

type conversationService struct {
	db  *gorm.DB
	log *logger.Logger

	users    userrepo.Repo
	players  playerrepo.Repo
	ads      adrepo.Repo
	convs    convrepo.Repo
	messages msgrepo.Repo
}

func NewConversationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users userrepo.Repo,
	players playerrepo.Repo,
	ads adrepo.Repo,
	convs convrepo.Repo,
	messages msgrepo.Repo,
) ConversationService {
	return &conversationService{
		db:       db,
		log:      baseLog.With("service", "ConversationService"),
		users:    users,
		players:  players,
		ads:      ads,
		convs:    convs,
		messages: messages,
	}
}

func caller(dbc dbctx.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("login required")
	}
	return rd, nil
}

func (s *conversationService) callerUser(dbc dbctx.Context, rd *requestdata.RequestData) (*domain.User, error) {
	rows, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, apierr.Unauthenticated("unknown user")
	}
	return rows[0], nil
}

func adURL(ad *domain.Ad) string {
	return fmt.Sprintf("/ads/%s/%d/%s", ad.Sport, ad.AdID, ad.Slug)
}

func (s *conversationService) SendDirectMessage(dbc dbctx.Context, targetUsername, content string) (*PostOutcome, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	target := normalization.Username(targetUsername)
	if target == rd.Username {
		return nil, apierr.SelfActionRejected("/conversations")
	}

	var out PostOutcome
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		targetUser, err := s.users.GetByUsername(repoCtx, target)
		if err != nil {
			return err
		}
		if targetUser == nil {
			return apierr.NotFound("user not found")
		}
		me, err := s.callerUser(repoCtx, rd)
		if err != nil {
			return err
		}

		conv, err := s.convs.FindDirect(repoCtx, rd.UserID, target)
		if err != nil {
			return err
		}
		if conv == nil {
			// The create runs in a savepoint so a unique violation on the
			// pair key does not poison the surrounding transaction.
			err = tx.Transaction(func(inner *gorm.DB) error {
				var cerr error
				conv, cerr = s.convs.CreateDirect(dbctx.Context{Ctx: dbc.Ctx, Tx: inner}, me, targetUser)
				return cerr
			})
			if apierr.IsDuplicateKey(err) {
				// Lost the create race: the pair key is unique, so the
				// conversation now exists. Re-fetch and reuse it.
				conv, err = s.convs.GetByDirectKey(repoCtx, domain.DirectKeyFor(me.ID, targetUser.ID))
			}
			if err != nil {
				return err
			}
			if conv == nil {
				return fmt.Errorf("direct conversation vanished after create")
			}
		}

		// Unconditional re-add: departure from a direct thread is undone
		// by the other side initiating contact again.
		if err := s.convs.AddParticipants(repoCtx, conv, me, targetUser); err != nil {
			return err
		}

		msg, err := s.messages.Append(repoCtx, conv.ID, me, domain.MessageRoleUser, content)
		if err != nil && !apierr.IsCode(err, apierr.CodeValidationFailed) {
			return err
		}
		out = PostOutcome{Conversation: conv, Message: msg}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *conversationService) LeaveDirectConversation(dbc dbctx.Context, targetUsername string) error {
	rd, err := caller(dbc)
	if err != nil {
		return err
	}
	target := normalization.Username(targetUsername)
	if target == rd.Username {
		return apierr.SelfActionRejected("/conversations")
	}

	return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		conv, err := s.convs.FindDirect(repoCtx, rd.UserID, target)
		if err != nil {
			return err
		}
		if conv == nil {
			return apierr.NotFoundRedirect("conversation not found", "/conversations")
		}

		count, err := s.convs.CountParticipants(repoCtx, conv.ID)
		if err != nil {
			return err
		}
		if count < 2 {
			// The other side already left; removing the caller would empty
			// the conversation, so it is deleted with its messages.
			return s.convs.Delete(repoCtx, conv.ID)
		}
		return s.convs.RemoveParticipant(repoCtx, conv.ID, rd.UserID)
	})
}

func (s *conversationService) ContactAdOwner(dbc dbctx.Context, adPublicID int, content string) (*PostOutcome, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}

	var out PostOutcome
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		ad, err := s.ads.GetByPublicID(repoCtx, adPublicID)
		if err != nil {
			return err
		}
		if ad == nil || ad.Team == nil {
			return apierr.NotFound("ad not found")
		}
		if ad.Team.UserID == rd.UserID {
			return apierr.SelfActionRejected(adURL(ad))
		}
		hasProfile, err := s.players.HasProfile(repoCtx, rd.UserID, ad.Sport)
		if err != nil {
			return err
		}
		if !hasProfile {
			return apierr.ProfileRequired(adURL(ad))
		}

		me, err := s.callerUser(repoCtx, rd)
		if err != nil {
			return err
		}
		owners, err := s.users.GetByIDs(repoCtx, []uuid.UUID{ad.Team.UserID})
		if err != nil {
			return err
		}
		if len(owners) == 0 || owners[0] == nil {
			return apierr.NotFound("ad owner not found")
		}
		owner := owners[0]

		conv, err := s.convs.FindActiveAd(repoCtx, rd.UserID, ad.ID)
		if err != nil {
			return err
		}
		if conv == nil {
			// Savepoint for the same reason as the direct path: a unique
			// violation must not poison the surrounding transaction.
			err = tx.Transaction(func(inner *gorm.DB) error {
				var cerr error
				conv, cerr = s.convs.CreateAd(dbctx.Context{Ctx: dbc.Ctx, Tx: inner}, me, owner, ad.ID)
				return cerr
			})
			if apierr.IsDuplicateKey(err) {
				// Lost the create race. The active (ad, initiator) pair is
				// unique, so the winner's thread is there to reuse; when the
				// violation was a public-id collision instead, one retry
				// with a fresh draw.
				conv, err = s.convs.FindActiveAd(repoCtx, rd.UserID, ad.ID)
				if err == nil && conv == nil {
					conv, err = s.convs.CreateAd(repoCtx, me, owner, ad.ID)
				}
			}
			if err != nil {
				return err
			}
			if conv == nil {
				return fmt.Errorf("ad conversation vanished after create")
			}
		}

		// Membership before append, the same rule as SendDirectMessage.
		if err := s.convs.AddParticipants(repoCtx, conv, me, owner); err != nil {
			return err
		}
		msg, err := s.messages.Append(repoCtx, conv.ID, me, domain.MessageRoleUser, content)
		if err != nil && !apierr.IsCode(err, apierr.CodeValidationFailed) {
			return err
		}
		out = PostOutcome{Conversation: conv, Message: msg}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *conversationService) PostAdMessage(dbc dbctx.Context, convPublicID int, content string) (*PostOutcome, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}

	var out PostOutcome
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		conv, err := s.convs.GetByPublicID(repoCtx, convPublicID)
		if err != nil {
			return err
		}
		if conv == nil {
			return apierr.NotFound("conversation not found")
		}
		member, err := s.convs.IsParticipant(repoCtx, conv.ID, rd.UserID)
		if err != nil {
			return err
		}
		if !member {
			return apierr.Forbidden("not a participant")
		}

		if !conv.IsActive {
			// Normal declined state, not an error: the thread is closed
			// and nothing is appended.
			out = PostOutcome{Conversation: conv, Notice: closedConversationNotice}
			return nil
		}

		me, err := s.callerUser(repoCtx, rd)
		if err != nil {
			return err
		}
		msg, err := s.messages.Append(repoCtx, conv.ID, me, domain.MessageRoleUser, content)
		if err != nil && !apierr.IsCode(err, apierr.CodeValidationFailed) {
			return err
		}
		out = PostOutcome{Conversation: conv, Message: msg}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *conversationService) LeaveAdConversation(dbc dbctx.Context, convPublicID int) error {
	rd, err := caller(dbc)
	if err != nil {
		return err
	}

	return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		conv, err := s.convs.GetByPublicID(repoCtx, convPublicID)
		if err != nil {
			return err
		}
		if conv == nil {
			return apierr.NotFound("conversation not found")
		}
		member, err := s.convs.IsParticipant(repoCtx, conv.ID, rd.UserID)
		if err != nil {
			return err
		}
		if !member {
			return apierr.Forbidden("not a participant")
		}

		count, err := s.convs.CountParticipants(repoCtx, conv.ID)
		if err != nil {
			return err
		}
		if count < 2 {
			// Caller is the sole remaining participant; the conversation
			// and its messages go away entirely.
			return s.convs.Delete(repoCtx, conv.ID)
		}

		if err := s.convs.RemoveParticipant(repoCtx, conv.ID, rd.UserID); err != nil {
			return err
		}
		if err := s.convs.SetActive(repoCtx, conv.ID, false); err != nil {
			return err
		}
		me, err := s.callerUser(repoCtx, rd)
		if err != nil {
			return err
		}
		// Departure notice documents the closing event, so it is appended
		// even though the conversation is now inactive.
		_, err = s.messages.Append(repoCtx, conv.ID, me, domain.MessageRoleSystem,
			fmt.Sprintf("%s left the conversation.", me.Username))
		return err
	})
}

func (s *conversationService) ListConversations(dbc dbctx.Context) (*ConversationLists, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}

	lists := &ConversationLists{
		Direct: []*domain.Conversation{},
		Ad:     []*domain.Conversation{},
	}
	g, ctx := errgroup.WithContext(dbc.Ctx)
	g.Go(func() error {
		rows, err := s.convs.ListDirectByUser(dbctx.Context{Ctx: ctx}, rd.UserID)
		if err != nil {
			return err
		}
		lists.Direct = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.convs.ListAdByUser(dbctx.Context{Ctx: ctx}, rd.UserID)
		if err != nil {
			return err
		}
		lists.Ad = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *conversationService) GetDirectConversation(dbc dbctx.Context, targetUsername string) (*ConversationPage, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}
	target := normalization.Username(targetUsername)
	if target == rd.Username {
		return nil, apierr.SelfActionRejected("/conversations")
	}

	conv, err := s.convs.FindDirect(dbc, rd.UserID, target)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation not found")
	}
	msgs, err := s.messages.ListFor(dbc, conv.ID)
	if err != nil {
		return nil, err
	}
	return &ConversationPage{Conversation: conv, Messages: msgs}, nil
}

func (s *conversationService) GetAdConversation(dbc dbctx.Context, convPublicID int) (*ConversationPage, error) {
	rd, err := caller(dbc)
	if err != nil {
		return nil, err
	}

	conv, err := s.convs.GetByPublicID(dbc, convPublicID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation not found")
	}
	member, err := s.convs.IsParticipant(dbc, conv.ID, rd.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apierr.Forbidden("not a participant")
	}
	msgs, err := s.messages.ListFor(dbc, conv.ID)
	if err != nil {
		return nil, err
	}
	return &ConversationPage{Conversation: conv, Messages: msgs}, nil
}
