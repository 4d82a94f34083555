package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/chatdeck-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the shared service error taxonomy onto HTTP
// statuses: 400 invalid input, 401 no session, 403 wrong owner, 404
// missing, 202 run still processing, 500 everything else.
func RespondServiceError(c *gin.Context, err error) {
	var inProgress *services.RunInProgressError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, services.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrForbidden):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.As(err, &inProgress):
		c.JSON(http.StatusAccepted, gin.H{
			"status":   "processing",
			"threadId": inProgress.ThreadID,
			"runId":    inProgress.RunID,
		})
	case errors.Is(err, services.ErrRunFailed):
		RespondError(c, http.StatusInternalServerError, "run_failed", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
