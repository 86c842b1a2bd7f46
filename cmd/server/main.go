package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/assignment-service/internal/cache"
	"github.com/learnhub/assignment-service/internal/clock"
	"github.com/learnhub/assignment-service/internal/config"
	"github.com/learnhub/assignment-service/internal/events"
	"github.com/learnhub/assignment-service/internal/handlers"
	"github.com/learnhub/assignment-service/internal/middleware"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories/postgres"
	"github.com/learnhub/assignment-service/internal/services"
	"github.com/learnhub/assignment-service/internal/utils"
	"github.com/learnhub/assignment-service/pkg"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.IsProduction() {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.Course{},
		&models.Assignment{},
		&models.AttemptRecord{},
		&models.Submission{},
	); err != nil {
		logger.LogError(err, "Failed to run migrations")
		os.Exit(1)
	}

	// Redis is optional: without it assignment reads just hit Postgres.
	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, assignment cache disabled", "error", err)
	} else {
		zapLogger, _ := zap.NewProduction()
		cacheService = cache.NewRedisCache(redisClient, zapLogger)
		defer redisClient.Close()
	}

	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.EventTopic,
		Logger:       slogLogger,
	})
	if err != nil {
		logger.LogError(err, "Failed to create Kafka publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	realClock := clock.Real()

	assignmentService := services.NewAssignmentService(repo, cacheService, validator, realClock, slogLogger)
	gradingEngine := services.NewGradingEngine(repo, slogLogger)
	attemptService := services.NewAttemptService(repo, gradingEngine, publisher, realClock, slogLogger)
	submissionService := services.NewSubmissionService(repo, slogLogger)

	middleware.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
	router.GET("/metrics", middleware.PrometheusHandler())

	handlerManager := handlers.NewHandlerManager(
		assignmentService,
		attemptService,
		submissionService,
		validator,
		logger,
	)
	handlerManager.SetupRoutes(router, middleware.AuthMiddleware(cfg.JWTSecret))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting assignment service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Forced shutdown")
	}
}
