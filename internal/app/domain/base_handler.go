// Package domain holds handler plumbing shared by the domain packages.
package domain

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

// RespondError maps a domain error to its HTTP status and writes the JSON
// error envelope.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	var applyErr *models.ApplyError

	switch {
	case errors.As(err, &applyErr):
		// The review decision was recorded but its effect was not applied;
		// the client may retry the apply step. This case must come before
		// the sentinel checks: the wrapped cause may itself be a sentinel
		// (a validation failure inside the apply, say) and matching it
		// first would hide that the approval already went through.
		h.Logger.Error("apply after approval failed",
			zap.String("suggestionID", applyErr.SuggestionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         applyErr.Error(),
			"suggestion_id": applyErr.SuggestionID,
			"retryable":     true,
		})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// PartialFailures renders per-item failures for multi-part operations that
// succeeded overall.
func PartialFailures(pf *models.PartialFailure) []gin.H {
	if pf == nil {
		return nil
	}
	out := make([]gin.H, 0, len(pf.Failed))
	for _, f := range pf.Failed {
		out = append(out, gin.H{"item": f.Item, "error": f.Err.Error()})
	}
	return out
}
