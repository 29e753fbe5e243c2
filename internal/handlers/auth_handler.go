package handlers

import (
	"net/http"

	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, dto.BindingMessage(err))
		return false
	}
	return true
}

func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req dto.AuthenticateRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthenticateResponse{
		JWT:       session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}
