package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/services"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type DocumentHandler struct {
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func documentID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("id")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// Get returns all revisions of the document, oldest first.
func (dh *DocumentHandler) Get(c *gin.Context) {
	id, err := documentID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	revisions, err := dh.documentService.GetRevisions(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, revisions)
}

type saveDocumentRequest struct {
	ChatID  string `json:"chatId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Kind    string `json:"kind"`
}

// Save appends a new revision of the document.
func (dh *DocumentHandler) Save(c *gin.Context) {
	id, err := documentID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	input := services.SaveDocumentInput{
		ID:      id,
		Title:   req.Title,
		Content: req.Content,
		Kind:    types.DocumentKind(req.Kind),
	}
	if req.Kind == "" {
		input.Kind = types.DocumentKindText
	}
	if req.ChatID != "" {
		chatID, err := uuid.Parse(req.ChatID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
			return
		}
		input.ChatID = chatID
	}

	doc, err := dh.documentService.Save(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, doc)
}

// DeleteAfter truncates forward history: every revision created
// strictly after the given timestamp is removed and returned.
func (dh *DocumentHandler) DeleteAfter(c *gin.Context) {
	id, err := documentID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	rawTS := c.Query("timestamp")
	if rawTS == "" {
		RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("missing timestamp"))
		return
	}
	ts, err := time.Parse(time.RFC3339Nano, rawTS)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("invalid timestamp: %w", err))
		return
	}

	deleted, err := dh.documentService.DeleteAfter(c.Request.Context(), id, ts)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, deleted)
}
