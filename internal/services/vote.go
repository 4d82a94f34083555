package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/requestdata"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type VoteService interface {
	Cast(ctx context.Context, chatID, messageID uuid.UUID, isUpvoted bool) (*types.Vote, error)
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]*types.Vote, error)
}

type voteService struct {
	db          *gorm.DB
	log         *logger.Logger
	voteRepo    repos.VoteRepo
	chatRepo    repos.ChatRepo
	messageRepo repos.MessageRepo
}

func NewVoteService(db *gorm.DB, log *logger.Logger, voteRepo repos.VoteRepo, chatRepo repos.ChatRepo, messageRepo repos.MessageRepo) VoteService {
	return &voteService{
		db:          db,
		log:         log.With("service", "VoteService"),
		voteRepo:    voteRepo,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
	}
}

// Cast records a thumbs up/down on a message. Voting again on the same
// message flips the stored direction; there is never more than one vote
// per (message, user) pair.
func (vs *voteService) Cast(ctx context.Context, chatID, messageID uuid.UUID, isUpvoted bool) (*types.Vote, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}

	messages, err := vs.messageRepo.GetByIDs(ctx, nil, []uuid.UUID{messageID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	if len(messages) == 0 || messages[0].ChatID != chatID {
		return nil, ErrNotFound
	}

	if err := vs.checkChatAccess(ctx, chatID, rd.UserID); err != nil {
		return nil, err
	}

	vote := &types.Vote{
		ID:        uuid.New(),
		ChatID:    chatID,
		MessageID: messageID,
		UserID:    rd.UserID,
		IsUpvoted: isUpvoted,
	}
	return vs.voteRepo.Upsert(ctx, nil, vote)
}

func (vs *voteService) ListByChat(ctx context.Context, chatID uuid.UUID) ([]*types.Vote, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	if err := vs.checkChatAccess(ctx, chatID, rd.UserID); err != nil {
		return nil, err
	}
	return vs.voteRepo.ListByChatID(ctx, nil, chatID)
}

func (vs *voteService) checkChatAccess(ctx context.Context, chatID, userID uuid.UUID) error {
	chats, err := vs.chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chatID})
	if err != nil {
		return fmt.Errorf("failed to fetch chat: %w", err)
	}
	if len(chats) == 0 {
		return ErrNotFound
	}
	if chats[0].Visibility != types.ChatVisibilityPublic && chats[0].UserID != userID {
		return ErrForbidden
	}
	return nil
}
