package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/middleware"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

const authCookieName = "auth_token"

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type Handlers struct {
	*domain.BaseHandler
	svc            Service
	cookieMaxAge   int
	cookieSecure   bool
	cookieHTTPOnly bool
}

func NewHandlers(svc Service, tokenExpirySeconds int, logger *zap.Logger) *Handlers {
	return &Handlers{
		BaseHandler:    domain.NewBaseHandler(logger),
		svc:            svc,
		cookieMaxAge:   tokenExpirySeconds,
		cookieSecure:   false,
		cookieHTTPOnly: true,
	}
}

// Register handles POST /api/auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	userID, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": userID})
}

// Login handles POST /api/auth/login. The token is returned in the body
// and set as a cookie for browser clients.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.SetCookie(authCookieName, token, h.cookieMaxAge, "/", "", h.cookieSecure, h.cookieHTTPOnly)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// Logout handles POST /api/auth/logout by clearing the cookie. Tokens stay
// valid until expiry; the server keeps no session state.
func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", h.cookieSecure, h.cookieHTTPOnly)
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// ChangePassword handles POST /api/auth/password.
func (h *Handlers) ChangePassword(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)
	if actor.ID == "" {
		h.RespondError(c, models.ErrUnauthenticated)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current and new password are required"})
		return
	}

	if err := h.svc.UpdatePassword(c.Request.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
