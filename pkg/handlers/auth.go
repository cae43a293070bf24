package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-sharing/pkg/apperr"
	"video-sharing/pkg/auth"
)

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	user, err := h.users.Register(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(c, err, "")
		return
	}

	token, err := h.tokens.Generate(auth.Session{UserID: user.ID, Email: user.Email})
	if err != nil {
		writeError(c, apperr.Upstream("auth.Login", err), user.ID)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(h.tokens.TTL().Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session reports who the caller is.
func (h *Handler) Session(c *gin.Context) {
	s := auth.CurrentSession(c)
	if s == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": s})
}
