package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/services"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type SuggestionHandler struct {
	suggestionService services.SuggestionService
}

func NewSuggestionHandler(suggestionService services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

type createSuggestionRequest struct {
	DocumentID    string `json:"documentId" binding:"required"`
	MessageID     string `json:"messageId"`
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText" binding:"required"`
	Description   string `json:"description"`
}

func (sh *SuggestionHandler) Create(c *gin.Context) {
	var req createSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	input := services.CreateSuggestionInput{
		DocumentID:    docID,
		OriginalText:  req.OriginalText,
		SuggestedText: req.SuggestedText,
		Description:   req.Description,
	}
	if req.MessageID != "" {
		messageID, err := uuid.Parse(req.MessageID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_message_id", err)
			return
		}
		input.MessageID = messageID
	}

	suggestion, err := sh.suggestionService.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, suggestion)
}

func (sh *SuggestionHandler) List(c *gin.Context) {
	raw := c.Query("documentId")
	if raw == "" {
		RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("missing documentId"))
		return
	}
	docID, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	suggestions, err := sh.suggestionService.ListByDocument(c.Request.Context(), docID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, suggestions)
}

type resolveSuggestionRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

func (sh *SuggestionHandler) Resolve(c *gin.Context) {
	var req resolveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := sh.suggestionService.Resolve(c.Request.Context(), id, types.SuggestionStatus(req.Status)); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"resolved": id})
}
