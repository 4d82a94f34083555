package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/services"
)

type AssistantHandler struct {
	assistantService services.AssistantService
}

func NewAssistantHandler(assistantService services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

type assistantRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
	ChatID   string `json:"chatId"`
}

// Send proxies one user message to the remote assistant. 200 carries
// the reply and thread id; 202 means the run outlived the bounded wait
// and the client should re-poll with threadId+runId; 500 means the run
// failed remotely.
func (ah *AssistantHandler) Send(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	input := services.SendInput{
		Message:  req.Message,
		ThreadID: req.ThreadID,
		RunID:    req.RunID,
	}
	if req.ChatID != "" {
		chatID, err := uuid.Parse(req.ChatID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
			return
		}
		input.ChatID = chatID
	}

	result, err := ah.assistantService.Send(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
