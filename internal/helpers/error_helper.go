package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict, apperr.KindIllegalState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError maps a service error onto its status code. Errors
// without a kind are logged and reported as a generic 500.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		)
		RespondWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	status := StatusForKind(appErr.Kind)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   HTTPStatusText(status),
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}
