package payment

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

const signatureHeader = "Stripe-Signature"

type Service interface {
	CreateIntent(ctx context.Context, customerID uuid.UUID, req *model.CreateIntentRequest) (*model.CreateIntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*model.WebhookResult, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	payments := r.Group("/payments")
	{
		payments.POST("/create-intent", auth.Authenticate(), h.CreateIntent)
		payments.POST("/webhook", h.Webhook)
	}
}

func (h *Handler) CreateIntent(c *gin.Context) {
	var req model.CreateIntentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.svc.CreateIntent(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, res)
}

// Webhook must see the body exactly as sent; the signature covers the raw bytes.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("unreadable body", err))
		return
	}

	res, err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}
