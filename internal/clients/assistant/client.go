package assistant

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/logger"
)

// RunStatus is the lifecycle state of one assistant run. Completed and
// Failed are the terminal states the proxy cares about; everything the
// remote API reports outside the happy path collapses into Failed.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// Client is the narrow surface of the remote assistant API the proxy
// consumes: thread management, message append, run lifecycle, and reply
// extraction. Kept as an interface so the service layer tests against a
// fake instead of the network.
type Client interface {
	CreateThread(ctx context.Context) (string, error)
	RetrieveThread(ctx context.Context, threadID string) (string, error)
	AddUserMessage(ctx context.Context, threadID, content string) error
	StartRun(ctx context.Context, threadID string) (string, error)
	RunStatus(ctx context.Context, threadID, runID string) (RunStatus, error)
	LatestAssistantText(ctx context.Context, threadID string) (string, bool, error)
}

type client struct {
	log         *logger.Logger
	api         *openai.Client
	assistantID string
}

func NewClient(cfg config.OpenAIConfig, log *logger.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if cfg.AssistantID == "" {
		return nil, fmt.Errorf("missing OPENAI_ASSISTANT_ID")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &client{
		log:         log.With("client", "AssistantClient"),
		api:         openai.NewClientWithConfig(apiCfg),
		assistantID: cfg.AssistantID,
	}, nil
}

func (c *client) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	c.log.Debug("Created assistant thread", "thread_id", thread.ID)
	return thread.ID, nil
}

func (c *client) RetrieveThread(ctx context.Context, threadID string) (string, error) {
	thread, err := c.api.RetrieveThread(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve thread %s: %w", threadID, err)
	}
	return thread.ID, nil
}

func (c *client) AddUserMessage(ctx context.Context, threadID, content string) error {
	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("failed to append message to thread %s: %w", threadID, err)
	}
	return nil
}

func (c *client) StartRun(ctx context.Context, threadID string) (string, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: c.assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create run on thread %s: %w", threadID, err)
	}
	c.log.Debug("Started assistant run", "thread_id", threadID, "run_id", run.ID)
	return run.ID, nil
}

func (c *client) RunStatus(ctx context.Context, threadID, runID string) (RunStatus, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve run %s: %w", runID, err)
	}
	switch run.Status {
	case openai.RunStatusQueued:
		return RunStatusQueued, nil
	case openai.RunStatusInProgress:
		return RunStatusInProgress, nil
	case openai.RunStatusCompleted:
		return RunStatusCompleted, nil
	case openai.RunStatusFailed, openai.RunStatusCancelling,
		openai.RunStatusCancelled, openai.RunStatusExpired,
		openai.RunStatusRequiresAction:
		return RunStatusFailed, nil
	default:
		return RunStatusInProgress, nil
	}
}

// LatestAssistantText fetches the newest assistant-authored message on
// the thread and returns its first text-typed content block. The second
// return is false when no such block exists.
func (c *client) LatestAssistantText(ctx context.Context, threadID string) (string, bool, error) {
	limit := 20
	order := "desc"
	list, err := c.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to list messages for thread %s: %w", threadID, err)
	}
	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, part := range msg.Content {
			if part.Type == "text" && part.Text != nil {
				return part.Text.Value, true, nil
			}
		}
		// Newest assistant message had no text block.
		return "", false, nil
	}
	return "", false, nil
}
