package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/allservices/marketplace-api/config"
	"github.com/allservices/marketplace-api/internal/handler/health"
	promhandler "github.com/allservices/marketplace-api/internal/handler/prometheus"
	"github.com/allservices/marketplace-api/internal/repository/postgres"
	"github.com/allservices/marketplace-api/internal/service/notification"
	"github.com/allservices/marketplace-api/internal/worker"
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/mailer"
	"github.com/allservices/marketplace-api/pkg/messaging"
	"github.com/allservices/marketplace-api/pkg/messaging/redis"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Logging.JSON,
	})
	log.Logger = *appLog.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	workerMetrics := metrics.NewMetrics(cfg.Metrics.Namespace, registry)

	outboxRepo := postgres.NewOutboxRepository(db)
	userRepo := postgres.NewUserRepository(db)

	processor, err := worker.NewOutboxProcessor(
		postgres.NewTransactor(db),
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
			Channel:       cfg.Redis.Channel,
		},
		appLog.WithFields(map[string]interface{}{"component": "outbox"}),
		workerMetrics,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create outbox processor")
	}

	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, appLog)

	var m mailer.Mailer = mailer.NopMailer{}
	if cfg.Mail.Host != "" {
		m = mailer.NewSMTPMailer(cfg.Mail.ToMailerConfig())
	} else {
		log.Warn().Msg("SMTP not configured, notifications are dropped")
	}
	notifier := notification.NewService(userRepo, m, workerMetrics, appLog.WithFields(map[string]interface{}{"component": "notifier"}))

	dispatcher := messaging.NewDispatcher(broker, func(msg messaging.Message, err error) {
		log.Error().Err(err).Str("message_id", msg.ID).Str("event_type", msg.Type).Msg("Failed to handle message")
	})
	notifier.Register(dispatcher)

	checks := map[string]health.Pinger{"database": db}
	if p, ok := broker.(health.Pinger); ok {
		checks["redis"] = p
	}
	srv := healthServer(cfg.Metrics.WorkerAddr, checks, promhandler.New(cfg.Metrics.Namespace, registry))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health check server failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	run(func() { processor.Start(ctx) })
	run(func() { cleanup.Start(ctx) })
	run(func() {
		if err := dispatcher.Run(ctx, cfg.Redis.Channel); err != nil {
			log.Error().Err(err).Msg("Notification consumer stopped")
		}
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	cancel()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health server forced to shutdown")
	}
}

func healthServer(addr string, checks map[string]health.Pinger, prom *promhandler.Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/metrics", prom.Handler())
	health.NewHandler(checks).RegisterRoutes(engine.Group(""))

	return &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
