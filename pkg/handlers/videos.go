package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/videos"
)

func (h *Handler) ListVideos(c *gin.Context) {
	list, err := h.videos.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListMyVideos(c *gin.Context) {
	list, err := h.videos.ListMine(c.Request.Context(), auth.CurrentSession(c))
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetVideo(c *gin.Context) {
	id := c.Param("id")
	video, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *Handler) CreateVideo(c *gin.Context) {
	session := auth.CurrentSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var in videos.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	video, err := h.videos.Create(c.Request.Context(), session, in)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *Handler) UpdateVideo(c *gin.Context) {
	id := c.Param("id")
	session := auth.CurrentSession(c)
	var in videos.UpdateInput
	// an empty body is an empty partial update
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		// a bad body only matters once the caller may touch the video
		if _, authErr := h.videos.Authorize(c.Request.Context(), session, id); authErr != nil {
			writeError(c, authErr, id)
			return
		}
		badRequest(c, "Invalid request body")
		return
	}

	video, err := h.videos.Update(c.Request.Context(), session, id, in)
	if err != nil {
		writeError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *Handler) DeleteVideo(c *gin.Context) {
	id := c.Param("id")
	if err := h.videos.Delete(c.Request.Context(), auth.CurrentSession(c), id); err != nil {
		writeError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}
