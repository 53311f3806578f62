package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glossary/api/internal/auth"
)

// SessionCookie carries the admin token for browser clients.
const SessionCookie = "admin_session"

const sessionKey = "adminSession"

// AdminMiddleware requires a valid admin token, read from the session
// cookie or an Authorization bearer header.
func AdminMiddleware(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "admin session required"})
			c.Abort()
			return
		}

		session, err := authn.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			c.Abort()
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// TokenFrom extracts the admin token from the request, preferring the
// Authorization header over the cookie.
func TokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return token
}

// SessionFrom returns the session set by AdminMiddleware, or nil.
func SessionFrom(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*auth.Session)
	return session
}
