package professional

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/handler"
	"github.com/allservices/marketplace-api/internal/middleware"
	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/pkg/httputil"
)

type Service interface {
	GetDetail(ctx context.Context, id uuid.UUID) (*model.ProfessionalDetail, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfessionalProfile, error)
	AddServiceArea(ctx context.Context, userID uuid.UUID, req *model.ServiceAreaRequest) (*model.ServiceArea, error)
	UpdateServiceArea(ctx context.Context, userID, id uuid.UUID, req *model.UpdateServiceAreaRequest) (*model.ServiceArea, error)
	DeleteServiceArea(ctx context.Context, userID, id uuid.UUID) error
	ListServiceAreas(ctx context.Context, userID uuid.UUID) ([]*model.ServiceArea, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	artisans := r.Group("/artisans")
	artisans.GET("/:id", h.GetDetail)

	me := artisans.Group("/me", auth.Authenticate(), auth.RequireCapability(model.CapabilityProfessional))
	{
		me.PATCH("/profile", h.UpdateProfile)
		me.GET("/service-areas", h.ListServiceAreas)
		me.POST("/service-areas", h.AddServiceArea)
		me.PATCH("/service-areas/:id", h.UpdateServiceArea)
		me.DELETE("/service-areas/:id", h.DeleteServiceArea)
	}
}

func (h *Handler) GetDetail(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) ListServiceAreas(c *gin.Context) {
	areas, err := h.svc.ListServiceAreas(c.Request.Context(), handler.UserID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, areas)
}

func (h *Handler) AddServiceArea(c *gin.Context) {
	var req model.ServiceAreaRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	area, err := h.svc.AddServiceArea(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, area)
}

func (h *Handler) UpdateServiceArea(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.UpdateServiceAreaRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	area, err := h.svc.UpdateServiceArea(c.Request.Context(), handler.UserID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, area)
}

func (h *Handler) DeleteServiceArea(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.DeleteServiceArea(c.Request.Context(), handler.UserID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusOK, gin.H{"ok": true})
}
