package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/services"
)

type AvatarHandler struct {
	avatarService services.AvatarService
	userRepo      repos.UserRepo
}

func NewAvatarHandler(avatarService services.AvatarService, userRepo repos.UserRepo) *AvatarHandler {
	return &AvatarHandler{avatarService: avatarService, userRepo: userRepo}
}

// Get renders the user's initials avatar as a PNG. Avatars are public
// and cacheable; the tile is deterministic per identity.
func (ah *AvatarHandler) Get(c *gin.Context) {
	raw := c.Query("userId")
	if raw == "" {
		RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("missing userId"))
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}

	users, err := ah.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{userID})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	if len(users) == 0 {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("unknown user"))
		return
	}

	img, err := ah.avatarService.Render(users[0])
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", img)
}
