package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authhandler "github.com/allservices/marketplace-api/internal/handler/auth"
	bookinghandler "github.com/allservices/marketplace-api/internal/handler/booking"
	cataloghandler "github.com/allservices/marketplace-api/internal/handler/catalog"
	"github.com/allservices/marketplace-api/internal/handler/health"
	paymenthandler "github.com/allservices/marketplace-api/internal/handler/payment"
	professionalhandler "github.com/allservices/marketplace-api/internal/handler/professional"
	"github.com/allservices/marketplace-api/internal/handler/prometheus"
	reviewhandler "github.com/allservices/marketplace-api/internal/handler/review"
	searchhandler "github.com/allservices/marketplace-api/internal/handler/search"
	userhandler "github.com/allservices/marketplace-api/internal/handler/user"
	"github.com/allservices/marketplace-api/internal/middleware"
)

// Handlers that need the auth middleware to guard some of their routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

// PublicHandler registers routes that never require a token.
type PublicHandler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Auth         *authhandler.Handler
	User         *userhandler.Handler
	Professional *professionalhandler.Handler
	Search       *searchhandler.Handler
	Catalog      *cataloghandler.Handler
	Booking      *bookinghandler.Handler
	Payment      *paymenthandler.Handler
	Review       *reviewhandler.Handler
	Health       *health.Handler
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *prometheus.Handler
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, metrics *prometheus.Handler, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultSizeLimitConfig().MaxBodySize
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodySize}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  metrics,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	for _, h := range []PublicHandler{r.handlers.Health, r.handlers.Search} {
		h.RegisterRoutes(api)
	}

	for _, h := range []Handler{
		r.handlers.Auth,
		r.handlers.User,
		r.handlers.Professional,
		r.handlers.Catalog,
		r.handlers.Booking,
		r.handlers.Payment,
		r.handlers.Review,
	} {
		h.RegisterRoutes(api, r.auth)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
