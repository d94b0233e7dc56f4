package suggestion

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/middleware"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

type ProposeRequest struct {
	Type       models.SuggestionType   `json:"type" binding:"required"`
	LocationID *string                 `json:"location_id"`
	Data       models.LocationFormData `json:"data"`
}

type ReviewRequest struct {
	Notes *string `json:"notes"`
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

// ProposeSuggestion handles POST /api/suggestions.
func (h *Handlers) ProposeSuggestion(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	var req ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s, err := h.svc.Propose(c.Request.Context(), actor, req.Type, req.LocationID, req.Data)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// ListSuggestions handles GET /api/suggestions for moderators, filtered by
// ?status= when given.
func (h *Handlers) ListSuggestions(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	var status *models.SuggestionStatus
	if s := c.Query("status"); s != "" {
		st := models.SuggestionStatus(s)
		status = &st
	}

	suggestions, err := h.svc.ListForReview(c.Request.Context(), actor, status)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ListMySuggestions handles GET /api/suggestions/mine.
func (h *Handlers) ListMySuggestions(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	suggestions, err := h.svc.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// PendingCount handles GET /api/suggestions/pending-count, backing the
// review queue badge.
func (h *Handlers) PendingCount(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	count, err := h.svc.PendingCount(c.Request.Context(), actor)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": count})
}

// ApproveSuggestion handles POST /api/suggestions/:id/approve.
func (h *Handlers) ApproveSuggestion(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s, err := h.svc.Approve(c.Request.Context(), actor, c.Param("id"), req.Notes)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// RejectSuggestion handles POST /api/suggestions/:id/reject.
func (h *Handlers) RejectSuggestion(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s, err := h.svc.Reject(c.Request.Context(), actor, c.Param("id"), req.Notes)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ApplySuggestion handles POST /api/suggestions/:id/apply, retrying the
// directory mutation of an approved suggestion after an apply failure.
func (h *Handlers) ApplySuggestion(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	if err := h.svc.ApplyApproved(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": true})
}

// PurgeSuggestion handles DELETE /api/suggestions/:id.
func (h *Handlers) PurgeSuggestion(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)

	if err := h.svc.Purge(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
