package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/chatdeck-backend/internal/services"
)

type stubAssistantService struct {
	result *services.SendResult
	err    error
	last   services.SendInput
}

func (s *stubAssistantService) Send(ctx context.Context, input services.SendInput) (*services.SendResult, error) {
	s.last = input
	return s.result, s.err
}

func newAssistantRouter(stub *stubAssistantService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/assistant", NewAssistantHandler(stub).Send)
	return router
}

func postAssistant(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAssistantSendCompleted(t *testing.T) {
	stub := &stubAssistantService{result: &services.SendResult{Message: "reply", ThreadID: "thread-1"}}
	router := newAssistantRouter(stub)

	rec := postAssistant(t, router, map[string]string{"message": "hi", "threadId": "thread-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var result services.SendResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Message != "reply" || result.ThreadID != "thread-1" {
		t.Fatalf("payload: %+v", result)
	}
	if stub.last.Message != "hi" || stub.last.ThreadID != "thread-1" {
		t.Fatalf("input not forwarded: %+v", stub.last)
	}
}

func TestAssistantSendStillProcessingMapsTo202(t *testing.T) {
	stub := &stubAssistantService{err: &services.RunInProgressError{ThreadID: "thread-2", RunID: "run-7"}}
	router := newAssistantRouter(stub)

	rec := postAssistant(t, router, map[string]string{"message": "slow"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: want=202 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Status   string `json:"status"`
		ThreadID string `json:"threadId"`
		RunID    string `json:"runId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "processing" || payload.ThreadID != "thread-2" || payload.RunID != "run-7" {
		t.Fatalf("re-poll payload: %+v", payload)
	}
}

func TestAssistantSendErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "run_failed", err: services.ErrRunFailed, want: http.StatusInternalServerError},
		{name: "invalid_input", err: services.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "forbidden_chat", err: services.ErrForbidden, want: http.StatusForbidden},
		{name: "unknown_chat", err: services.ErrNotFound, want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newAssistantRouter(&stubAssistantService{err: tc.err})
			rec := postAssistant(t, router, map[string]string{"message": "x"})
			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d", tc.want, rec.Code)
			}
		})
	}
}

func TestAssistantSendRejectsMalformedChatID(t *testing.T) {
	router := newAssistantRouter(&stubAssistantService{result: &services.SendResult{}})
	rec := postAssistant(t, router, map[string]string{"message": "x", "chatId": "not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
}
