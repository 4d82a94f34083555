package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSendMessageCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/assistant" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("authorization header: %q", got)
		}
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Message != "hello" {
			t.Errorf("message: %q", req.Message)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"message":  "hi back",
			"threadId": "thread-1",
			"chatId":   "chat-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("token-123"))
	result, err := client.SendMessage(context.Background(), SendMessageRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Processing {
		t.Fatalf("completed reply must not be marked processing")
	}
	if result.Message != "hi back" || result.ThreadID != "thread-1" || result.ChatID != "chat-1" {
		t.Fatalf("result: %+v", result)
	}
}

func TestClientSendMessageAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status":   "processing",
			"threadId": "thread-2",
			"runId":    "run-2",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.SendMessage(context.Background(), SendMessageRequest{Message: "slow"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !result.Processing || result.ThreadID != "thread-2" || result.RunID != "run-2" {
		t.Fatalf("202 result: %+v", result)
	}
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]map[string]string{
			"error": {"message": "forbidden", "code": "forbidden"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.DocumentRevisions(context.Background(), "doc-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Code != "forbidden" {
		t.Fatalf("decoded error: %+v", apiErr)
	}
}

func TestClientGuestAdoptsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]string{"id": "u1", "email": "guest-1a2b3c4d@guest.local"},
			"token": "guest-token",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Guest(context.Background())
	if err != nil {
		t.Fatalf("Guest: %v", err)
	}
	if client.Token() != "guest-token" {
		t.Fatalf("token not adopted: %q", client.Token())
	}
	if !IsGuestEmail(result.User.Email) {
		t.Fatalf("guest email: %q", result.User.Email)
	}
}

func TestClientArtifactStreamEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("chatId"); got != "chat-1" {
			t.Errorf("chatId: %q", got)
		}
		if got := r.URL.Query().Get("token"); got != "tok" {
			t.Errorf("token must ride in the query for SSE, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("event: text-delta\ndata: {\"type\":\"text-delta\",\"kind\":\"text\",\"content\":\"chunk\"}\n\n"))
		w.Write([]byte("event: finish\ndata: {\"type\":\"finish\",\"kind\":\"text\"}\n\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("tok"))
	var artifact Artifact
	if err := FollowArtifact(context.Background(), client, "chat-1", &artifact, nil); err != nil {
		t.Fatalf("FollowArtifact: %v", err)
	}
	if artifact.Content != "chunk" || !artifact.Complete {
		t.Fatalf("artifact: %+v", artifact)
	}
}
