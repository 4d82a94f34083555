package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/repos/testutil"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

func newVoteFixture(t *testing.T) (VoteService, *gorm.DB, repos.ChatRepo, repos.MessageRepo) {
	t.Helper()
	gdb := testDB(t)
	log := testutil.Logger(t)
	chatRepo := repos.NewChatRepo(gdb, log)
	messageRepo := repos.NewMessageRepo(gdb, log)
	voteRepo := repos.NewVoteRepo(gdb, log)
	return NewVoteService(gdb, log, voteRepo, chatRepo, messageRepo), gdb, chatRepo, messageRepo
}

func TestCastVoteFlipsInPlace(t *testing.T) {
	svc, gdb, chatRepo, messageRepo := newVoteFixture(t)
	userID := uuid.New()
	ctx := authedCtx(userID)

	chat := seedChat(t, gdb, chatRepo, userID, types.ChatVisibilityPrivate)
	msg := seedMessage(t, messageRepo, chat.ID, types.MessageRoleAssistant, "an answer")

	if _, err := svc.Cast(ctx, chat.ID, msg.ID, true); err != nil {
		t.Fatalf("first cast: %v", err)
	}
	if _, err := svc.Cast(ctx, chat.ID, msg.ID, false); err != nil {
		t.Fatalf("second cast: %v", err)
	}

	votes, err := svc.ListByChat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ListByChat: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("repeat votes must collapse to one row, got %d", len(votes))
	}
	if votes[0].IsUpvoted {
		t.Fatalf("second cast must overwrite the direction")
	}
}

func TestCastVoteMessageMustBelongToChat(t *testing.T) {
	svc, gdb, chatRepo, messageRepo := newVoteFixture(t)
	userID := uuid.New()
	ctx := authedCtx(userID)

	chatA := seedChat(t, gdb, chatRepo, userID, types.ChatVisibilityPrivate)
	chatB := seedChat(t, gdb, chatRepo, userID, types.ChatVisibilityPrivate)
	msg := seedMessage(t, messageRepo, chatA.ID, types.MessageRoleAssistant, "answer")

	if _, err := svc.Cast(ctx, chatB.ID, msg.ID, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-chat vote: want ErrNotFound, got %v", err)
	}
	if _, err := svc.Cast(ctx, chatA.ID, uuid.New(), true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown message: want ErrNotFound, got %v", err)
	}
}

func TestVoteAccessFollowsChatVisibility(t *testing.T) {
	svc, gdb, chatRepo, messageRepo := newVoteFixture(t)
	owner := uuid.New()
	stranger := authedCtx(uuid.New())

	private := seedChat(t, gdb, chatRepo, owner, types.ChatVisibilityPrivate)
	privateMsg := seedMessage(t, messageRepo, private.ID, types.MessageRoleAssistant, "private answer")
	public := seedChat(t, gdb, chatRepo, owner, types.ChatVisibilityPublic)
	publicMsg := seedMessage(t, messageRepo, public.ID, types.MessageRoleAssistant, "public answer")

	if _, err := svc.Cast(stranger, private.ID, privateMsg.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("private chat: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Cast(stranger, public.ID, publicMsg.ID, true); err != nil {
		t.Fatalf("public chat should accept any session's vote: %v", err)
	}
}
