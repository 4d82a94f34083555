package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/clients/assistant"
	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/requestdata"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

// NoResponseText is the sentinel reply used when a completed run yields
// no text-typed assistant content.
const NoResponseText = "No response"

const chatTitleMaxRunes = 80

type SendInput struct {
	Message  string
	ThreadID string
	// RunID resumes the wait on an already-started run after a
	// previous request returned the still-processing signal.
	RunID string
	// ChatID appends the exchange to an existing owned chat instead of
	// creating a new one. Zero means a fresh chat per exchange.
	ChatID uuid.UUID
}

type SendResult struct {
	Message  string    `json:"message"`
	ThreadID string    `json:"threadId"`
	ChatID   uuid.UUID `json:"chatId,omitempty"`
}

type AssistantService interface {
	Send(ctx context.Context, input SendInput) (*SendResult, error)
}

type assistantService struct {
	db           *gorm.DB
	log          *logger.Logger
	client       assistant.Client
	chatRepo     repos.ChatRepo
	messageRepo  repos.MessageRepo
	streamRepo   repos.StreamRepo
	pollInterval time.Duration
	runTimeout   time.Duration
}

func NewAssistantService(
	db *gorm.DB,
	log *logger.Logger,
	client assistant.Client,
	chatRepo repos.ChatRepo,
	messageRepo repos.MessageRepo,
	streamRepo repos.StreamRepo,
	pollInterval time.Duration,
	runTimeout time.Duration,
) AssistantService {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if runTimeout <= 0 {
		runTimeout = 2 * time.Minute
	}
	return &assistantService{
		db:           db,
		log:          log.With("service", "AssistantService"),
		client:       client,
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		streamRepo:   streamRepo,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
	}
}

// Send forwards one user message to the remote assistant and waits for
// the reply. The wait is bounded: when the run outlives the configured
// ceiling, a RunInProgressError carries the thread and run ids back so
// the caller can re-poll instead of hanging the request forever.
func (s *assistantService) Send(ctx context.Context, input SendInput) (*SendResult, error) {
	resuming := input.RunID != "" && input.ThreadID != ""
	if !resuming && strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: message required", ErrInvalidInput)
	}

	threadID := input.ThreadID
	var err error
	if threadID == "" {
		threadID, err = s.client.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
	} else if !resuming {
		if threadID, err = s.client.RetrieveThread(ctx, threadID); err != nil {
			return nil, err
		}
	}

	targetChat, err := s.resolveTargetChat(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}

	runID := input.RunID
	if !resuming {
		if err := s.client.AddUserMessage(ctx, threadID, input.Message); err != nil {
			return nil, err
		}
		if runID, err = s.client.StartRun(ctx, threadID); err != nil {
			return nil, err
		}
	}

	// Stream marker brackets the run for chats that already exist, so a
	// client reconnecting mid-run can detect the interrupted stream. The
	// marker must outlive a bounded-wait expiry: the run is still in
	// flight then, and resume detection depends on the row. It is cleared
	// only on terminal outcomes.
	markerLive := false
	if targetChat != nil {
		marker := &types.Stream{ID: uuid.New(), ChatID: targetChat.ID, CreatedAt: time.Now().UTC()}
		if _, err := s.streamRepo.Create(ctx, nil, marker); err != nil {
			s.log.Warn("Failed to create stream marker", "error", err, "chat_id", targetChat.ID)
		} else {
			markerLive = true
		}
		defer func() {
			if !markerLive {
				return
			}
			if err := s.streamRepo.DeleteByChatIDs(context.WithoutCancel(ctx), nil, []uuid.UUID{targetChat.ID}); err != nil {
				s.log.Warn("Failed to clear stream marker", "error", err, "chat_id", targetChat.ID)
			}
		}()
	}

	status, err := s.waitForRun(ctx, threadID, runID)
	if err != nil {
		var inProgress *RunInProgressError
		if errors.As(err, &inProgress) {
			markerLive = false
		}
		return nil, err
	}
	if status != assistant.RunStatusCompleted {
		s.log.Warn("Assistant run ended in failure", "thread_id", threadID, "run_id", runID, "status", status)
		return nil, ErrRunFailed
	}

	reply, found, err := s.client.LatestAssistantText(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !found {
		reply = NoResponseText
	}

	result := &SendResult{Message: reply, ThreadID: threadID}

	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.Guest {
		// Anonymous and guest exchanges are not persisted.
		return result, nil
	}

	chatID, err := s.persistExchange(ctx, rd.UserID, targetChat, input.Message, reply)
	if err != nil {
		return nil, err
	}
	result.ChatID = chatID
	return result, nil
}

func (s *assistantService) resolveTargetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error) {
	if chatID == uuid.Nil {
		return nil, nil
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, ErrUnauthorized
	}
	chats, err := s.chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chatID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}
	if len(chats) == 0 {
		return nil, ErrNotFound
	}
	if chats[0].UserID != rd.UserID {
		return nil, ErrForbidden
	}
	return chats[0], nil
}

func (s *assistantService) waitForRun(ctx context.Context, threadID, runID string) (assistant.RunStatus, error) {
	deadline := time.Now().Add(s.runTimeout)
	for {
		status, err := s.client.RunStatus(ctx, threadID, runID)
		if err != nil {
			return "", err
		}
		if status.Terminal() {
			return status, nil
		}
		if time.Now().After(deadline) {
			return "", &RunInProgressError{ThreadID: threadID, RunID: runID}
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

// persistExchange stores the user prompt and assistant reply as a
// single atomic write: either both messages (and the chat row, when one
// is created) land, or nothing does.
func (s *assistantService) persistExchange(ctx context.Context, userID uuid.UUID, targetChat *types.Chat, prompt, reply string) (uuid.UUID, error) {
	now := time.Now().UTC()
	var chatID uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if targetChat != nil {
			chatID = targetChat.ID
		} else {
			chat := &types.Chat{
				ID:         uuid.New(),
				UserID:     userID,
				Title:      TitleFromMessage(prompt),
				Visibility: types.ChatVisibilityPrivate,
				CreatedAt:  now,
			}
			if _, err := s.chatRepo.Create(ctx, tx, []*types.Chat{chat}); err != nil {
				return fmt.Errorf("failed to create chat: %w", err)
			}
			chatID = chat.ID
		}

		messages := []*types.Message{
			{
				ID:        uuid.New(),
				ChatID:    chatID,
				Role:      types.MessageRoleUser,
				Content:   prompt,
				CreatedAt: now,
			},
			{
				ID:        uuid.New(),
				ChatID:    chatID,
				Role:      types.MessageRoleAssistant,
				Content:   reply,
				CreatedAt: now.Add(time.Millisecond),
			},
		}
		if _, err := s.messageRepo.Create(ctx, tx, messages); err != nil {
			return fmt.Errorf("failed to create messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return chatID, nil
}

// TitleFromMessage derives a chat title from the first user prompt,
// truncated on a rune boundary.
func TitleFromMessage(message string) string {
	title := strings.TrimSpace(message)
	if title == "" {
		return "New chat"
	}
	runes := []rune(title)
	if len(runes) <= chatTitleMaxRunes {
		return title
	}
	return string(runes[:chatTitleMaxRunes])
}
