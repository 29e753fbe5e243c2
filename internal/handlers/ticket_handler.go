package handlers

import (
	"net/http"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TicketHandler serves tickets nested under their owner.
type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func ticketInput(req dto.TicketRequest) (services.TicketInput, error) {
	input := services.TicketInput{Price: req.Price, Type: req.Type}
	if req.EventID != nil {
		id, err := uuid.Parse(*req.EventID)
		if err != nil {
			return input, apperr.InvalidArgument("event_id must be a valid UUID")
		}
		input.EventID = &id
	}
	return input, nil
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req dto.TicketRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := ticketInput(req)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	ticket, err := h.tickets.Create(c.Request.Context(), c.Param("username"), input)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTicketResponse(ticket))
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	tickets, err := h.tickets.ListByOwner(c.Request.Context(), c.Param("username"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTicketResponses(tickets))
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, err := helpers.ParseUUIDParam(c, "ticketId")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	ticket, err := h.tickets.Get(c.Request.Context(), c.Param("username"), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTicketResponse(ticket))
}

func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	id, err := helpers.ParseUUIDParam(c, "ticketId")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	var req dto.TicketRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := ticketInput(req)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	ticket, err := h.tickets.Update(c.Request.Context(), c.Param("username"), id, input)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTicketResponse(ticket))
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	id, err := helpers.ParseUUIDParam(c, "ticketId")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	if err := h.tickets.Delete(c.Request.Context(), c.Param("username"), id); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
