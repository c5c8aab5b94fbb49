package booking

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
	Create(ctx context.Context, customerID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Booking, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error)
	ListForProfessional(ctx context.Context, professionalID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error)
	Accept(ctx context.Context, professionalID, id uuid.UUID) (*model.Booking, error)
	Reject(ctx context.Context, professionalID, id uuid.UUID) (*model.Booking, error)
	Complete(ctx context.Context, professionalID, id uuid.UUID) (*model.Booking, error)
	Cancel(ctx context.Context, customerID, id uuid.UUID) (*model.Booking, error)
}

type transitionFunc func(ctx context.Context, actorID, id uuid.UUID) (*model.Booking, error)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	bookings := r.Group("/bookings", auth.Authenticate())
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.ListForCustomer)
		bookings.GET("/:id", h.Get)
		bookings.POST("/:id/cancel", h.transition(h.svc.Cancel))
	}

	artisan := r.Group("/artisan/bookings", auth.Authenticate(), auth.RequireCapability(model.CapabilityProfessional))
	{
		artisan.GET("", h.ListForProfessional)
		artisan.POST("/:id/accept", h.transition(h.svc.Accept))
		artisan.POST("/:id/reject", h.transition(h.svc.Reject))
		artisan.POST("/:id/complete", h.transition(h.svc.Complete))
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	booking, err := h.svc.Create(c.Request.Context(), handler.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, booking)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	booking, err := h.svc.Get(c.Request.Context(), handler.UserID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, booking)
}

func (h *Handler) ListForCustomer(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	items, err := h.svc.ListForCustomer(c.Request.Context(), handler.UserID(c), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nonNil(items))
}

func (h *Handler) ListForProfessional(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	items, err := h.svc.ListForProfessional(c.Request.Context(), handler.UserID(c), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nonNil(items))
}

// transition answers 200 with null data when the booking was not in a state
// the action applies to.
func (h *Handler) transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := handler.ParamID(c, "id")
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		booking, err := fn(c.Request.Context(), handler.UserID(c), id)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, booking)
	}
}

func parseFilter(c *gin.Context) (model.BookingFilter, error) {
	var filter model.BookingFilter
	if raw := c.Query("status"); raw != "" {
		status := model.BookingStatus(raw)
		if !status.Valid() {
			return filter, apperrors.BadRequest("invalid status", nil)
		}
		filter.Status = &status
	}
	return filter, nil
}

func nonNil(items []*model.BookingListing) []*model.BookingListing {
	if items == nil {
		return []*model.BookingListing{}
	}
	return items
}
