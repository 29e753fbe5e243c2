package handlers

import (
	"net/http"

	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

type PhotoHandler struct {
	users   *services.UserService
	storage *helpers.FileStorage
}

func NewPhotoHandler(users *services.UserService, storage *helpers.FileStorage) *PhotoHandler {
	return &PhotoHandler{users: users, storage: storage}
}

func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Photo file is required.")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	user, err := h.users.UploadPhoto(c.Request.Context(), c.Param("username"), file, fileHeader.Size)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

func (h *PhotoHandler) AssignPhoto(c *gin.Context) {
	var req dto.AssignPhotoRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.AssignPhoto(c.Request.Context(), c.Param("username"), req.Filename)
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	photo, err := h.users.GetPhoto(c.Request.Context(), c.Param("username"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.Header("Content-Type", photo.ContentType)
	c.File(h.storage.Path(photo.Filename))
}

func (h *PhotoHandler) RemovePhoto(c *gin.Context) {
	user, err := h.users.RemovePhoto(c.Request.Context(), c.Param("username"))
	if err != nil {
		helpers.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
