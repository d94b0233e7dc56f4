package search

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

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

// Search handles GET /api/search?q=. An empty query reports an inactive
// filter rather than an empty result set, so clients show everything.
func (h *Handlers) Search(c *gin.Context) {
	results, filterActive, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	if results == nil {
		results = []models.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":       results,
		"filter_active": filterActive,
	})
}
