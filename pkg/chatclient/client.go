package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// APIError is the decoded error envelope returned by the backend for
// any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type ChatSummary struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatDetail struct {
	Chat     ChatSummary   `json:"chat"`
	Messages []ChatMessage `json:"messages"`
}

type Vote struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
	IsUpvoted bool   `json:"is_upvoted"`
}

type DocumentRevision struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ChatID    string    `json:"chat_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
}

type Suggestion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	MessageID     string    `json:"message_id"`
	OriginalText  string    `json:"original_text"`
	SuggestedText string    `json:"suggested_text"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type StreamMarker struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Message  string `json:"message,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
	RunID    string `json:"runId,omitempty"`
	ChatID   string `json:"chatId,omitempty"`
}

// SendMessageResult carries either a completed reply (Processing false)
// or, when the backend's bounded wait ran out, the thread and run ids to
// re-poll with (Processing true).
type SendMessageResult struct {
	Message    string `json:"message"`
	ThreadID   string `json:"threadId"`
	ChatID     string `json:"chatId"`
	Processing bool   `json:"-"`
	RunID      string `json:"runId"`
}

// Client is a typed HTTP client for the chatdeck API. The zero value is
// not usable; construct with NewClient. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope errorEnvelope
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return resp.StatusCode, raw, apiErr
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	_, raw, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "name": name, "password": password}
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", nil, body, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", nil, body, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Guest provisions an anonymous account and adopts its token.
func (c *Client) Guest(ctx context.Context) (*AuthResult, error) {
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/guest", nil, nil, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// SendMessage proxies one user message to the assistant. A 202 from the
// backend is not an error: the result comes back with Processing set and
// the thread/run ids needed to re-poll.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error) {
	status, raw, err := c.do(ctx, http.MethodPost, "/api/assistant", nil, req)
	if err != nil {
		return nil, err
	}
	var result SendMessageResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	result.Processing = status == http.StatusAccepted
	return &result, nil
}

func (c *Client) History(ctx context.Context) ([]ChatSummary, error) {
	var chats []ChatSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/history", nil, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) Chat(ctx context.Context, chatID string) (*ChatDetail, error) {
	var detail ChatDetail
	query := url.Values{"id": {chatID}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat", query, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	query := url.Values{"id": {chatID}}
	return c.doJSON(ctx, http.MethodDelete, "/api/chat", query, nil, nil)
}

// ActiveStream reports the chat's in-flight stream marker, nil when
// nothing is streaming.
func (c *Client) ActiveStream(ctx context.Context, chatID string) (*StreamMarker, error) {
	var out struct {
		Stream *StreamMarker `json:"stream"`
	}
	query := url.Values{"chatId": {chatID}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/stream", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Stream, nil
}

func (c *Client) Votes(ctx context.Context, chatID string) ([]Vote, error) {
	var votes []Vote
	query := url.Values{"chatId": {chatID}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/vote", query, nil, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *Client) CastVote(ctx context.Context, chatID, messageID string, isUpvoted bool) (*Vote, error) {
	body := map[string]any{"chatId": chatID, "messageId": messageID, "isUpvoted": isUpvoted}
	var vote Vote
	if err := c.doJSON(ctx, http.MethodPatch, "/api/vote", nil, body, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// DocumentRevisions returns every revision of the document, oldest
// first. The last element is the current version.
func (c *Client) DocumentRevisions(ctx context.Context, documentID string) ([]DocumentRevision, error) {
	var revisions []DocumentRevision
	query := url.Values{"id": {documentID}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/document", query, nil, &revisions); err != nil {
		return nil, err
	}
	return revisions, nil
}

type SaveDocumentRequest struct {
	ChatID  string `json:"chatId,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

func (c *Client) SaveDocument(ctx context.Context, documentID string, req SaveDocumentRequest) (*DocumentRevision, error) {
	var revision DocumentRevision
	query := url.Values{"id": {documentID}}
	if err := c.doJSON(ctx, http.MethodPost, "/api/document", query, req, &revision); err != nil {
		return nil, err
	}
	return &revision, nil
}

// DeleteDocumentAfter removes every revision created strictly after the
// timestamp and returns the removed rows.
func (c *Client) DeleteDocumentAfter(ctx context.Context, documentID string, after time.Time) ([]DocumentRevision, error) {
	var deleted []DocumentRevision
	query := url.Values{
		"id":        {documentID},
		"timestamp": {after.Format(time.RFC3339Nano)},
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/document", query, nil, &deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

type CreateSuggestionRequest struct {
	DocumentID    string `json:"documentId"`
	MessageID     string `json:"messageId,omitempty"`
	OriginalText  string `json:"originalText,omitempty"`
	SuggestedText string `json:"suggestedText"`
	Description   string `json:"description,omitempty"`
}

func (c *Client) CreateSuggestion(ctx context.Context, req CreateSuggestionRequest) (*Suggestion, error) {
	var suggestion Suggestion
	if err := c.doJSON(ctx, http.MethodPost, "/api/suggestions", nil, req, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (c *Client) Suggestions(ctx context.Context, documentID string) ([]Suggestion, error) {
	var suggestions []Suggestion
	query := url.Values{"documentId": {documentID}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/suggestions", query, nil, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *Client) ResolveSuggestion(ctx context.Context, id, status string) error {
	body := map[string]string{"id": id, "status": status}
	return c.doJSON(ctx, http.MethodPatch, "/api/suggestions", nil, body, nil)
}

// OpenArtifactStream opens the server-sent-event stream of artifact
// parts for one chat. The caller owns the returned body and should feed
// it to ReadStream. The token rides in the query string because
// EventSource-style consumers cannot set headers.
func (c *Client) OpenArtifactStream(ctx context.Context, chatID string) (io.ReadCloser, error) {
	query := url.Values{"chatId": {chatID}}
	if token := c.Token(); token != "" {
		query.Set("token", token)
	}
	endpoint := c.baseURL + "/api/sse/artifact?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream is long-lived, so the client-wide request timeout does
	// not apply; cancellation comes from ctx.
	streamClient := *c.httpClient
	streamClient.Timeout = 0
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
	}
	return resp.Body, nil
}
