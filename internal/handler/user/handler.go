package user

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
	GetMe(ctx context.Context, id uuid.UUID) (*model.UserView, error)
	UpdateMe(ctx context.Context, id uuid.UUID, req *model.UpdateMeRequest) (*model.AuthResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	users := r.Group("/users", auth.Authenticate())
	{
		users.GET("/me", h.GetMe)
		users.PATCH("/me", h.UpdateMe)
	}
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetMe(c.Request.Context(), handler.UserID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req model.UpdateMeRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp, err := h.service.UpdateMe(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}
