package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/middleware"
)

type AuthHandler struct {
	authn        *auth.Authenticator
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandler(authn *auth.Authenticator, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authn: authn, secureCookie: secureCookie, logger: logger}
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// Login exchanges the admin password for a session token, also set as an
// HttpOnly cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, session, err := h.authn.Login(req.Password)
	if err != nil {
		h.logger.Warn("admin login failed", zap.String("client_ip", c.ClientIP()))
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.authn.TTL().Seconds()), "/", "", h.secureCookie, true)
	h.logger.Info("admin logged in", zap.String("client_ip", c.ClientIP()))

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		Token:         token,
		ExpiresAt:     &session.ExpiresAt,
	})
}

// Logout clears the session cookie. Tokens are stateless and stay valid
// until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Session reports whether the caller holds a valid admin session.
func (h *AuthHandler) Session(c *gin.Context) {
	token := middleware.TokenFrom(c)
	if token == "" {
		c.JSON(http.StatusOK, SessionResponse{})
		return
	}
	session, err := h.authn.Verify(token)
	if err != nil {
		c.JSON(http.StatusOK, SessionResponse{})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Authenticated: true, ExpiresAt: &session.ExpiresAt})
}
