package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/media"
)

type signRequest struct {
	FileType    string `json:"fileType" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

// SignUpload issues a presigned URL so the client can upload straight to
// the media store.
func (h *Handler) SignUpload(c *gin.Context) {
	if auth.CurrentSession(c) == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "fileType, fileName, contentType and size are required")
		return
	}
	category, ok := media.ParseCategory(req.FileType)
	if !ok {
		badRequest(c, "File type must be image or video")
		return
	}

	ticket, err := h.media.SignUpload(c.Request.Context(), category, req.FileName, req.ContentType, req.Size)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// Upload proxies a multipart file to the media store.
func (h *Handler) Upload(c *gin.Context) {
	if auth.CurrentSession(c) == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxVideoSize+1<<20)

	category, ok := media.ParseCategory(c.DefaultPostForm("fileType", string(media.Video)))
	if !ok {
		badRequest(c, "File type must be image or video")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "File not found in form data or too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		badRequest(c, "Failed to open uploaded file")
		return
	}
	defer src.Close()

	res, err := h.media.Upload(c.Request.Context(), category, file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, res)
}
