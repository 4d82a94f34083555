package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/services"
)

type VoteHandler struct {
	voteService services.VoteService
}

func NewVoteHandler(voteService services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

func (vh *VoteHandler) List(c *gin.Context) {
	id, err := chatID(c, "chatId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	votes, err := vh.voteService.ListByChat(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, votes)
}

type castVoteRequest struct {
	ChatID    string `json:"chatId" binding:"required"`
	MessageID string `json:"messageId" binding:"required"`
	IsUpvoted bool   `json:"isUpvoted"`
}

func (vh *VoteHandler) Cast(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	chatUUID, err := uuid.Parse(req.ChatID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
		return
	}
	messageUUID, err := uuid.Parse(req.MessageID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_message_id", err)
		return
	}

	vote, err := vh.voteService.Cast(c.Request.Context(), chatUUID, messageUUID, req.IsUpvoted)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, vote)
}
