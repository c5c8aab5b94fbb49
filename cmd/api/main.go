package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/allservices/marketplace-api/config"
	authhandler "github.com/allservices/marketplace-api/internal/handler/auth"
	bookinghandler "github.com/allservices/marketplace-api/internal/handler/booking"
	cataloghandler "github.com/allservices/marketplace-api/internal/handler/catalog"
	"github.com/allservices/marketplace-api/internal/handler/health"
	paymenthandler "github.com/allservices/marketplace-api/internal/handler/payment"
	professionalhandler "github.com/allservices/marketplace-api/internal/handler/professional"
	promhandler "github.com/allservices/marketplace-api/internal/handler/prometheus"
	reviewhandler "github.com/allservices/marketplace-api/internal/handler/review"
	searchhandler "github.com/allservices/marketplace-api/internal/handler/search"
	userhandler "github.com/allservices/marketplace-api/internal/handler/user"
	"github.com/allservices/marketplace-api/internal/middleware"
	"github.com/allservices/marketplace-api/internal/repository/postgres"
	"github.com/allservices/marketplace-api/internal/router"
	authService "github.com/allservices/marketplace-api/internal/service/auth"
	bookingService "github.com/allservices/marketplace-api/internal/service/booking"
	catalogService "github.com/allservices/marketplace-api/internal/service/catalog"
	eventService "github.com/allservices/marketplace-api/internal/service/event"
	paymentService "github.com/allservices/marketplace-api/internal/service/payment"
	professionalService "github.com/allservices/marketplace-api/internal/service/professional"
	reviewService "github.com/allservices/marketplace-api/internal/service/review"
	searchService "github.com/allservices/marketplace-api/internal/service/search"
	userService "github.com/allservices/marketplace-api/internal/service/user"
	"github.com/allservices/marketplace-api/pkg/audit"
	"github.com/allservices/marketplace-api/pkg/auth"
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/metrics"
	"github.com/allservices/marketplace-api/pkg/payment/stripe"
	"github.com/allservices/marketplace-api/pkg/security"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Logging.JSON,
	})
	log.Logger = *appLog.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = postgres.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	auditor, err := audit.New(cfg.Logging.AuditPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open audit log")
	}
	defer auditor.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(cfg.Metrics.Namespace, registry)

	jwtSvc, err := auth.NewJWTService(auth.Config{
		Secret:      cfg.JWT.Secret,
		Issuer:      cfg.JWT.Issuer,
		ExpiryHours: cfg.JWT.ExpiryHours,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}

	stripeCfg, err := stripe.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load payment configuration")
	}
	if stripeCfg.SecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, payment intents will return 503")
	}
	provider := stripe.New(stripeCfg)

	// Initialize repositories
	tx := postgres.NewTransactor(db)
	userRepo := postgres.NewUserRepository(db)
	proRepo := postgres.NewProfessionalRepository(db)
	areaRepo := postgres.NewServiceAreaRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Initialize services
	events := eventService.NewEventService(outboxRepo)
	authSvc := authService.NewService(tx, userRepo, proRepo, jwtSvc, security.NewBcryptHasher(cfg.Security.BcryptCost), events, auditor)
	userSvc := userService.NewService(tx, userRepo, proRepo, jwtSvc, auditor)
	proSvc := professionalService.NewService(tx, proRepo, areaRepo, catalogRepo, reviewRepo)
	catalogSvc := catalogService.NewService(catalogRepo, catalogService.Config{CacheDuration: cfg.Cache.CategoryTTL})
	searchSvc := searchService.NewService(proRepo, appMetrics, appLog)
	bookingSvc := bookingService.NewService(tx, bookingRepo, catalogRepo, events, appMetrics, auditor)
	paymentSvc := paymentService.NewService(tx, paymentRepo, provider, events, appMetrics, auditor, appLog)
	reviewSvc := reviewService.NewService(tx, reviewRepo, bookingRepo, proRepo, events, appMetrics, auditor)

	if err := middleware.RegisterValidators(middleware.DefaultValidationConfig()); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}

	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodySize:    cfg.Server.MaxBodyBytes,
		CORSConfig:     corsConfig,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		router.Handlers{
			Auth:         authhandler.NewHandler(authSvc),
			User:         userhandler.NewHandler(userSvc),
			Professional: professionalhandler.NewHandler(proSvc),
			Search:       searchhandler.NewHandler(searchSvc),
			Catalog:      cataloghandler.NewHandler(catalogSvc),
			Booking:      bookinghandler.NewHandler(bookingSvc),
			Payment:      paymenthandler.NewHandler(paymentSvc),
			Review:       reviewhandler.NewHandler(reviewSvc),
			Health:       health.NewHandler(map[string]health.Pinger{"database": db}),
		},
		promhandler.New(cfg.Metrics.Namespace, registry),
		routerConfig,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
