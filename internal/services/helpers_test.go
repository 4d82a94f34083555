package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/repos/testutil"
	"github.com/mkarlin/chatdeck-backend/internal/requestdata"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
		Email:  "user@example.com",
	})
}

func guestCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
		Email:  "guest-12345678@guest.local",
		Guest:  true,
	})
}

func seedChat(t *testing.T, gdb *gorm.DB, chatRepo repos.ChatRepo, userID uuid.UUID, visibility types.ChatVisibility) *types.Chat {
	t.Helper()
	chat := &types.Chat{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      "seed chat",
		Visibility: visibility,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := chatRepo.Create(context.Background(), nil, []*types.Chat{chat}); err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	return chat
}

func seedMessage(t *testing.T, messageRepo repos.MessageRepo, chatID uuid.UUID, role types.MessageRole, content string) *types.Message {
	t.Helper()
	msg := &types.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := messageRepo.Create(context.Background(), nil, []*types.Message{msg}); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return msg
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.DB(t)
}
