package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "session"
	sessionKey = "auth.session"
)

// Middleware resolves the caller's session from the session cookie or a
// Bearer token. Requests without a valid token continue anonymously; each
// operation decides whether it needs a session.
func Middleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := requestToken(c); token != "" {
			if s, err := tokens.Validate(token); err == nil {
				c.Set(sessionKey, s)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session resolved for this request, or nil.
func CurrentSession(c *gin.Context) *Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

func requestToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}
