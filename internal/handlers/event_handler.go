package handlers

import (
	"context"
	"net/http"

	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func eventInput(req dto.EventRequest) services.EventInput {
	return services.EventInput{
		Name:      req.Name,
		Location:  req.Location,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Price:     req.Price,
		Organizer: req.Organizer,
	}
}

// eventID parses the :id path parameter, responding with 400 when it is
// not a UUID.
func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.Create(c.Request.Context(), middleware.GetIdentity(c), eventInput(req))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewEventResponse(event))
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	page, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	from, err := helpers.ParseTimeQuery(c, "from")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	to, err := helpers.ParseTimeQuery(c, "to")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}

	filter := repositories.EventFilter{Location: c.Query("location"), From: from, To: to}
	events, total, err := h.events.List(c.Request.Context(), filter, page)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EventListResponse{
		Events:     dto.NewEventResponses(events),
		Pagination: dto.NewPagination(page, total),
	})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventResponse(event))
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.Update(c.Request.Context(), id, eventInput(req))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) SetOrganizer(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.OrganizerRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.SetOrganizer(c.Request.Context(), id, req.Username)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventResponse(event))
}

func (h *EventHandler) RemoveOrganizer(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	event, err := h.events.RemoveOrganizer(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventResponse(event))
}

func (h *EventHandler) ListParticipants(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	users, err := h.events.ListParticipants(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponses(users))
}

func (h *EventHandler) AddParticipants(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.UsernamesRequest
	if !bindJSON(c, &req) {
		return
	}
	users, err := h.events.AddParticipants(c.Request.Context(), id, req.Usernames)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponses(users))
}

func (h *EventHandler) RemoveParticipants(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.UsernamesRequest
	if !bindJSON(c, &req) {
		return
	}
	users, err := h.events.RemoveParticipants(c.Request.Context(), id, req.Usernames)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponses(users))
}

func (h *EventHandler) ListTickets(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	tickets, err := h.events.ListTickets(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTicketResponses(tickets))
}

func (h *EventHandler) AssignTickets(c *gin.Context) {
	h.changeTickets(c, h.events.AssignTickets)
}

func (h *EventHandler) RemoveTickets(c *gin.Context) {
	h.changeTickets(c, h.events.RemoveTickets)
}

func (h *EventHandler) changeTickets(c *gin.Context, apply func(context.Context, uuid.UUID, []uuid.UUID) ([]models.Ticket, error)) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.TicketIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	ticketIDs, err := helpers.ParseUUIDs("ticket_ids", req.TicketIDs)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	tickets, err := apply(c.Request.Context(), id, ticketIDs)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTicketResponses(tickets))
}

func (h *EventHandler) ListFeedback(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	feedback, err := h.events.ListFeedback(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackResponses(feedback))
}

func (h *EventHandler) AssignFeedback(c *gin.Context) {
	h.changeFeedback(c, h.events.AssignFeedback)
}

// RemoveFeedback deletes the listed feedback entries from the event.
func (h *EventHandler) RemoveFeedback(c *gin.Context) {
	h.changeFeedback(c, h.events.RemoveFeedback)
}

func (h *EventHandler) changeFeedback(c *gin.Context, apply func(context.Context, uuid.UUID, []uuid.UUID) ([]models.Feedback, error)) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.FeedbackIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	feedbackIDs, err := helpers.ParseUUIDs("feedback_ids", req.FeedbackIDs)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	feedback, err := apply(c.Request.Context(), id, feedbackIDs)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackResponses(feedback))
}
