package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"video-sharing/pkg/apperr"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/media"
	"video-sharing/pkg/users"
	"video-sharing/pkg/videos"
)

type Handler struct {
	videos       *videos.Service
	users        *users.Service
	media        *media.Service
	tokens       *auth.Tokens
	secureCookie bool
}

type Options struct {
	Videos *videos.Service
	Users  *users.Service
	Media  *media.Service
	Tokens *auth.Tokens
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

func New(opts Options) *Handler {
	return &Handler{
		videos:       opts.Videos,
		users:        opts.Users,
		media:        opts.Media,
		tokens:       opts.Tokens,
		secureCookie: opts.SecureCookie,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps err to its status code. Upstream failures are logged
// with enough context to diagnose and returned without detail.
func writeError(c *gin.Context, err error, id string) {
	kind := apperr.KindOf(err)
	if kind == apperr.UpstreamFailure {
		log.Printf("ERROR %s %s id=%q: %v", c.Request.Method, c.FullPath(), id, err)
	}
	c.JSON(kind.HTTPStatus(), gin.H{"error": apperr.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
