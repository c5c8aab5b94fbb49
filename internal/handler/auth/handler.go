package auth

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
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.UserView, error)
	UpgradeRoles(ctx context.Context, userID uuid.UUID, req *model.UpgradeRolesRequest) (*model.AuthResponse, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/auth")
	{
		g.POST("/register", h.Register)
		g.POST("/login", h.Login)
		g.POST("/logout", auth.Authenticate(), h.Logout)
		g.GET("/email-exists", h.EmailExists)
		g.GET("/me", auth.Authenticate(), h.Me)
		g.POST("/upgrade-roles", auth.Authenticate(), h.UpgradeRoles)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

// Logout is an acknowledgement; tokens are stateless and expire on their own.
func (h *Handler) Logout(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), handler.UserID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) UpgradeRoles(c *gin.Context) {
	var req model.UpgradeRolesRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.svc.UpgradeRoles(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) EmailExists(c *gin.Context) {
	exists, err := h.svc.EmailExists(c.Request.Context(), c.Query("email"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"exists": exists})
}
