package handlers

import (
	"net/http"

	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Enabled:  enabled,
		Roles:    req.Roles,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	users, total, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      dto.NewUserResponses(users),
		Pagination: dto.NewPagination(page, total),
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("username"), services.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Enabled:  *req.Enabled,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("username")); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) AddRoles(c *gin.Context) {
	var req dto.RolesRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.AddRoles(c.Request.Context(), c.Param("username"), req.Roles)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) RemoveRoles(c *gin.Context) {
	var req dto.RolesRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.RemoveRoles(c.Request.Context(), c.Param("username"), req.Roles)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// AssignTickets transfers existing tickets to the user.
func (h *UserHandler) AssignTickets(c *gin.Context) {
	var req dto.TicketIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	ids, err := helpers.ParseUUIDs("ticket_ids", req.TicketIDs)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	tickets, err := h.users.AssignTickets(c.Request.Context(), c.Param("username"), ids)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTicketResponses(tickets))
}
