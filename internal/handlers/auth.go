package handlers

import (
	"net/http"

	"colabora/internal/middleware"
	"colabora/internal/models"
	"colabora/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	auth *services.AuthService
	log  zerolog.Logger
}

func NewAuthHandler(auth *services.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "malformed credentials")
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.startSession(c, user, token, http.StatusCreated)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "malformed credentials")
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.startSession(c, user, token, http.StatusOK)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User, token string, code int) {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(code, gin.H{"user": user, "token": token})
}
