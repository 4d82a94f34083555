package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/realtime"
	"github.com/mkarlin/chatdeck-backend/internal/services"
)

type SSEHandler struct {
	log         *logger.Logger
	hub         *realtime.Hub
	chatService services.ChatService
}

func NewSSEHandler(log *logger.Logger, hub *realtime.Hub, chatService services.ChatService) *SSEHandler {
	return &SSEHandler{
		log:         log.With("handler", "SSEHandler"),
		hub:         hub,
		chatService: chatService,
	}
}

// ArtifactStream holds the connection open and relays artifact stream
// parts for one chat as server-sent events. Subscription follows the
// same read rule as every chat-scoped endpoint: owner or public chat.
func (sh *SSEHandler) ArtifactStream(c *gin.Context) {
	rawChatID := c.Query("chatId")
	if rawChatID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("missing chatId"))
		return
	}
	chatID, err := uuid.Parse(rawChatID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("invalid chatId: %w", err))
		return
	}
	if err := sh.chatService.CheckAccess(c.Request.Context(), chatID); err != nil {
		RespondServiceError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("response writer does not support flushing"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := sh.hub.Subscribe(realtime.ChatChannel(chatID.String()))
	defer sh.hub.Unsubscribe(sub)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case event := <-sub.Outbound:
			payload, err := json.Marshal(event.Part)
			if err != nil {
				sh.log.Warn("Failed to marshal stream part", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Part.Type, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
