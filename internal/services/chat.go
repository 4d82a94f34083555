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

type ChatWithMessages struct {
	Chat     *types.Chat      `json:"chat"`
	Messages []*types.Message `json:"messages"`
}

type ChatService interface {
	History(ctx context.Context) ([]*types.Chat, error)
	Get(ctx context.Context, chatID uuid.UUID) (*ChatWithMessages, error)
	Delete(ctx context.Context, chatID uuid.UUID) error
	LatestStream(ctx context.Context, chatID uuid.UUID) (*types.Stream, error)
	CheckAccess(ctx context.Context, chatID uuid.UUID) error
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	chatRepo    repos.ChatRepo
	messageRepo repos.MessageRepo
	voteRepo    repos.VoteRepo
	streamRepo  repos.StreamRepo
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	chatRepo repos.ChatRepo,
	messageRepo repos.MessageRepo,
	voteRepo repos.VoteRepo,
	streamRepo repos.StreamRepo,
) ChatService {
	return &chatService{
		db:          db,
		log:         log.With("service", "ChatService"),
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		voteRepo:    voteRepo,
		streamRepo:  streamRepo,
	}
}

func (cs *chatService) History(ctx context.Context) ([]*types.Chat, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	chats, err := cs.chatRepo.ListByUserID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// Get returns the chat and its messages in conversation order. Private
// chats are visible to their owner only; public chats to any session.
func (cs *chatService) Get(ctx context.Context, chatID uuid.UUID) (*ChatWithMessages, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	chats, err := cs.chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chatID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}
	if len(chats) == 0 {
		return nil, ErrNotFound
	}
	chat := chats[0]
	if chat.Visibility != types.ChatVisibilityPublic && chat.UserID != rd.UserID {
		return nil, ErrForbidden
	}

	messages, err := cs.messageRepo.ListByChatID(ctx, nil, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return &ChatWithMessages{Chat: chat, Messages: messages}, nil
}

// Delete removes the chat and its dependent rows in one transaction.
func (cs *chatService) Delete(ctx context.Context, chatID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return ErrUnauthorized
	}
	chats, err := cs.chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chatID})
	if err != nil {
		return fmt.Errorf("failed to fetch chat: %w", err)
	}
	if len(chats) == 0 {
		return ErrNotFound
	}
	if chats[0].UserID != rd.UserID {
		return ErrForbidden
	}

	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uuid.UUID{chatID}
		if err := cs.voteRepo.DeleteByChatIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete votes: %w", err)
		}
		if err := cs.streamRepo.DeleteByChatIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete stream markers: %w", err)
		}
		if err := cs.messageRepo.DeleteByChatIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := cs.chatRepo.DeleteByIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete chat: %w", err)
		}
		return nil
	})
}

// LatestStream reports the newest in-flight stream marker for the chat,
// nil when nothing is streaming. Used by reconnecting clients to decide
// whether to resume.
func (cs *chatService) LatestStream(ctx context.Context, chatID uuid.UUID) (*types.Stream, error) {
	if err := cs.CheckAccess(ctx, chatID); err != nil {
		return nil, err
	}
	return cs.streamRepo.LatestByChatID(ctx, nil, chatID)
}

// CheckAccess applies the shared read rule for chat-scoped resources:
// owners always, any session for public chats. The SSE subscription
// gate uses this before handing out a channel.
func (cs *chatService) CheckAccess(ctx context.Context, chatID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return ErrUnauthorized
	}
	chats, err := cs.chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chatID})
	if err != nil {
		return fmt.Errorf("failed to fetch chat: %w", err)
	}
	if len(chats) == 0 {
		return ErrNotFound
	}
	if chats[0].Visibility != types.ChatVisibilityPublic && chats[0].UserID != rd.UserID {
		return ErrForbidden
	}
	return nil
}
