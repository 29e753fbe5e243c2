package handlers

import (
	"net/http"

	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Authenticated returns the caller behind the bearer token.
func (h *AuthHandler) Authenticated(c *gin.Context) {
	principal, err := h.auth.Me(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthenticatedResponse(principal))
}
