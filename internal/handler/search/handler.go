package search

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/pkg/httputil"
)

type Service interface {
	Search(ctx context.Context, filters model.SearchFilters) (*model.SearchResult, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/artisans", h.Search)
}

// Search is public. Malformed query values are ignored rather than rejected.
func (h *Handler) Search(c *gin.Context) {
	filters := model.ParseSearchFilters(c.Request.URL.Query())

	res, err := h.svc.Search(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, res.Items, res.Page, res.Limit)
}
