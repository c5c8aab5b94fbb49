package review

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/handler"
	"github.com/allservices/marketplace-api/internal/middleware"
	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/pkg/httputil"
)

type Service interface {
	Submit(ctx context.Context, customerID uuid.UUID, req *model.SubmitReviewRequest) (*model.Review, error)
	ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.ReviewListing, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	reviews := r.Group("/reviews")
	{
		reviews.POST("", auth.Authenticate(), h.Submit)
		reviews.GET("/artisan/:id", h.ListForProfessional)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitReviewRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	review, err := h.svc.Submit(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, review)
}

func (h *Handler) ListForProfessional(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	items, err := h.svc.ListForProfessional(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if items == nil {
		items = []*model.ReviewListing{}
	}
	httputil.RespondWithSuccess(c, items)
}
