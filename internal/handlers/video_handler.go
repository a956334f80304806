package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speedrun/backend/internal/models"
	"github.com/speedrun/backend/internal/services"
)

// VideoService is the workflow surface the handler depends on.
type VideoService interface {
	DeleteAsset(ctx context.Context, id string) (*models.Asset, error)
	AppendComment(ctx context.Context, id string, in services.CommentInput) (*models.Asset, error)
}

type VideoHandler struct {
	videoService VideoService
}

func NewVideoHandler(videoService VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Handle dispatches on the request method. All methods share one endpoint.
// DELETE /api/v1/videos?id=...
// PUT    /api/v1/videos?id=...  {"comment","userId","userName"}
func (h *VideoHandler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	case http.MethodDelete:
		h.DeleteVideo(c)
	case http.MethodPut:
		h.AddComment(c)
	default:
		c.String(http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.String(http.StatusBadRequest, "Video ID is required.")
		return
	}

	asset, err := h.videoService.DeleteAsset(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Error deleting video")
		return
	}

	c.String(http.StatusOK, "Video metadata and file (%s) deleted successfully.", asset.FileName)
}

func (h *VideoHandler) AddComment(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.String(http.StatusBadRequest, "Video ID is required.")
		return
	}

	var in services.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.String(http.StatusBadRequest, "Invalid comment data.")
		return
	}

	if _, err := h.videoService.AppendComment(c.Request.Context(), id, in); err != nil {
		h.writeError(c, err, "Error updating video")
		return
	}

	c.String(http.StatusOK, "Comment added successfully to video with ID: %s.", id)
}

func (h *VideoHandler) writeError(c *gin.Context, err error, prefix string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.String(http.StatusBadRequest, "%s", validation.Message)
	case errors.Is(err, services.ErrNotFound):
		c.String(http.StatusNotFound, "Video not found.")
	default:
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "%s: %s", prefix, err.Error())
	}
}
