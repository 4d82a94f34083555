package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusReady     Status = "ready"
	StatusSubmitted Status = "submitted"
)

// DeliveryState tracks what actually happened to an optimistically
// rendered message: pending until the backend answers, committed once
// the exchange is persisted, failed when the request errored out.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryCommitted DeliveryState = "committed"
	DeliveryFailed    DeliveryState = "failed"
)

type Message struct {
	ID        string
	Role      string
	Content   string
	Delivery  DeliveryState
	CreatedAt time.Time
}

type Toast struct {
	Level string
	Text  string
}

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSendInFlight    = errors.New("a send is already in flight")
	ErrNoPendingRun    = errors.New("no run to resume")
	ErrNotRetryable    = errors.New("message is not in the failed state")
	ErrStillProcessing = errors.New("run still processing")
)

// AssistantAPI is the slice of Client the session needs.
type AssistantAPI interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error)
}

// Session is the conversation state machine behind a chat view. The
// message list is rendered optimistically: Send appends the user turn
// immediately as pending and the delivery state records what the backend
// eventually said about it. Safe for concurrent use.
type Session struct {
	api AssistantAPI

	mu         sync.Mutex
	status     Status
	threadID   string
	chatID     string
	runID      string
	messages   []Message
	cancelWait context.CancelFunc

	onToast      func(Toast)
	history      *HistoryCache
	initialQuery sync.Once
}

type SessionOption func(*Session)

// WithToastHandler registers the callback invoked when a send fails or
// is abandoned.
func WithToastHandler(fn func(Toast)) SessionOption {
	return func(s *Session) { s.onToast = fn }
}

// WithHistoryCache wires the sidebar cache; every send attempt
// invalidates it regardless of outcome.
func WithHistoryCache(hc *HistoryCache) SessionOption {
	return func(s *Session) { s.history = hc }
}

// WithChatID resumes an existing chat instead of creating one on the
// first exchange.
func WithChatID(chatID string) SessionOption {
	return func(s *Session) { s.chatID = chatID }
}

func WithThreadID(threadID string) SessionOption {
	return func(s *Session) { s.threadID = threadID }
}

func NewSession(api AssistantAPI, opts ...SessionOption) *Session {
	s := &Session{api: api, status: StatusReady}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Messages returns a snapshot of the rendered conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send appends the message optimistically and submits it. On success
// the user turn flips to committed and the assistant turn is appended;
// on failure the user turn flips to failed, a toast fires, and no
// assistant turn appears. ErrStillProcessing means the backend's
// bounded wait ran out; the turn stays pending and Resume re-polls it.
func (s *Session) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.status == StatusSubmitted {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.status = StatusSubmitted
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   content,
		Delivery:  DeliveryPending,
		CreatedAt: time.Now(),
	})
	index := len(s.messages) - 1
	req := SendMessageRequest{
		Message:  content,
		ThreadID: s.threadID,
		ChatID:   s.chatID,
	}
	s.mu.Unlock()

	return s.deliver(ctx, index, req)
}

// Resume re-polls a run that previously outlived the backend's bounded
// wait. The pending user turn is resolved by the outcome.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	if s.runID == "" || s.threadID == "" {
		s.mu.Unlock()
		return ErrNoPendingRun
	}
	if s.status == StatusSubmitted {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.status = StatusSubmitted
	index := s.lastPendingUserLocked()
	req := SendMessageRequest{
		ThreadID: s.threadID,
		RunID:    s.runID,
		ChatID:   s.chatID,
	}
	s.mu.Unlock()

	return s.deliver(ctx, index, req)
}

// Retry resubmits a failed message in place.
func (s *Session) Retry(ctx context.Context, messageID string) error {
	s.mu.Lock()
	if s.status == StatusSubmitted {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	index := -1
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			index = i
			break
		}
	}
	if index < 0 || s.messages[index].Delivery != DeliveryFailed {
		s.mu.Unlock()
		return ErrNotRetryable
	}
	s.status = StatusSubmitted
	s.messages[index].Delivery = DeliveryPending
	req := SendMessageRequest{
		Message:  s.messages[index].Content,
		ThreadID: s.threadID,
		ChatID:   s.chatID,
	}
	s.mu.Unlock()

	return s.deliver(ctx, index, req)
}

// Stop abandons the local wait for the in-flight send. The remote run
// keeps going; only this client stops listening for it. The abandoned
// turn is marked failed so it can be retried.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancelWait
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SendInitialQuery submits a query carried in on the URL exactly once
// per session; later calls are no-ops.
func (s *Session) SendInitialQuery(ctx context.Context, query string) error {
	var err error
	sent := false
	s.initialQuery.Do(func() {
		sent = true
		err = s.Send(ctx, query)
	})
	if !sent {
		return nil
	}
	return err
}

func (s *Session) deliver(ctx context.Context, index int, req SendMessageRequest) error {
	waitCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancelWait = cancel
	s.mu.Unlock()
	defer cancel()

	result, err := s.api.SendMessage(waitCtx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusReady
	s.cancelWait = nil
	if s.history != nil {
		defer s.history.Invalidate()
	}

	if err != nil {
		if index >= 0 {
			s.messages[index].Delivery = DeliveryFailed
		}
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			s.toast(Toast{Level: "info", Text: "Stopped waiting for the reply. The run continues in the background."})
		} else {
			s.toast(Toast{Level: "error", Text: "Failed to send message, please try again."})
		}
		return err
	}

	s.threadID = result.ThreadID

	if result.Processing {
		s.runID = result.RunID
		return ErrStillProcessing
	}
	s.runID = ""

	if index >= 0 {
		s.messages[index].Delivery = DeliveryCommitted
	}
	if result.ChatID != "" {
		s.chatID = result.ChatID
	}
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   result.Message,
		Delivery:  DeliveryCommitted,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *Session) lastPendingUserLocked() int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == "user" && s.messages[i].Delivery == DeliveryPending {
			return i
		}
	}
	return -1
}

func (s *Session) toast(t Toast) {
	if s.onToast != nil {
		s.onToast(t)
	}
}

// HistoryAPI is the slice of Client the cache needs.
type HistoryAPI interface {
	History(ctx context.Context) ([]ChatSummary, error)
}

// HistoryCache memoizes the sidebar chat list. Chats refetches only
// after an Invalidate, so a send that lands a new chat shows up on the
// next read without polling.
type HistoryCache struct {
	api HistoryAPI

	mu    sync.Mutex
	chats []ChatSummary
	valid bool
}

func NewHistoryCache(api HistoryAPI) *HistoryCache {
	return &HistoryCache{api: api}
}

func (h *HistoryCache) Chats(ctx context.Context) ([]ChatSummary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.valid {
		chats, err := h.api.History(ctx)
		if err != nil {
			return nil, err
		}
		h.chats = chats
		h.valid = true
	}
	out := make([]ChatSummary, len(h.chats))
	copy(out, h.chats)
	return out, nil
}

func (h *HistoryCache) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.valid = false
}
