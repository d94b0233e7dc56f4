package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/middleware"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type Handlers struct {
	*domain.BaseHandler
	svc Service
}

func NewHandlers(svc Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		BaseHandler: domain.NewBaseHandler(logger),
		svc:         svc,
	}
}

// GetMe handles GET /api/users/me.
func (h *Handlers) GetMe(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)
	if actor.ID == "" {
		h.RespondError(c, models.ErrUnauthenticated)
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe handles PATCH /api/users/me with a partial JSON body.
func (h *Handlers) UpdateMe(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)
	if actor.ID == "" {
		h.RespondError(c, models.ErrUnauthenticated)
		return
	}

	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), actor, actor.ID, update)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListUsers handles GET /api/users for moderators.
func (h *Handlers) ListUsers(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	users, err := h.svc.ListUsers(c.Request.Context(), actor)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateRole handles PUT /api/users/:id/role for superadmins.
func (h *Handlers) UpdateRole(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	profile, err := h.svc.UpdateRole(c.Request.Context(), actor, c.Param("id"), roles.Role(req.Role))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RoleStats handles GET /api/users/role-stats for moderators.
func (h *Handlers) RoleStats(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	stats, err := h.svc.RoleStats(c.Request.Context(), actor)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
