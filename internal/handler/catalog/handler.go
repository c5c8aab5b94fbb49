package catalog

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/handler"
	"github.com/allservices/marketplace-api/internal/middleware"
	"github.com/allservices/marketplace-api/internal/model"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/httputil"
)

type Service interface {
	ListCategories(ctx context.Context) ([]*model.ServiceCategory, error)
	ListServices(ctx context.Context, professionalID uuid.UUID) ([]*model.ServiceListing, error)
	CreateService(ctx context.Context, professionalID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error)
	UpdateService(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error)
	DeleteService(ctx context.Context, professionalID, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/categories", h.ListCategories)
	r.GET("/services", h.ListServices)

	own := r.Group("/artisan/services", auth.Authenticate(), auth.RequireCapability(model.CapabilityProfessional))
	{
		own.POST("", h.CreateService)
		own.PATCH("/:id", h.UpdateService)
		own.DELETE("/:id", h.DeleteService)
	}
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, categories)
}

// ListServices requires ?artisan_id=.
func (h *Handler) ListServices(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Query("artisan_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("artisan_id is required", err))
		return
	}

	services, err := h.svc.ListServices(c.Request.Context(), professionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, services)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	svc, err := h.svc.CreateService(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, svc)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.UpdateServiceRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	svc, err := h.svc.UpdateService(c.Request.Context(), handler.UserID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, svc)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.DeleteService(c.Request.Context(), handler.UserID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"ok": true})
}
