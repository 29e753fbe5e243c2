package handlers

import (
	"net/http"

	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FeedbackHandler serves feedback nested under its event.
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

func feedbackIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	eventID, ok := eventID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := helpers.ParseUUIDParam(c, "feedbackId")
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, id, true
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req dto.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.feedback.Create(c.Request.Context(), id, services.FeedbackInput{
		Username: req.Username,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewFeedbackResponse(entry))
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	eventID, id, ok := feedbackIDs(c)
	if !ok {
		return
	}
	entry, err := h.feedback.Get(c.Request.Context(), eventID, id)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackResponse(entry))
}

func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	eventID, id, ok := feedbackIDs(c)
	if !ok {
		return
	}
	var req dto.UpdateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.feedback.Update(c.Request.Context(), eventID, id, req.Rating, req.Comment)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackResponse(entry))
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	eventID, id, ok := feedbackIDs(c)
	if !ok {
		return
	}
	if err := h.feedback.Delete(c.Request.Context(), eventID, id); err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
