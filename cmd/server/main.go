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
	"github.com/learnloop/activity-service/internal/cache"
	"github.com/learnloop/activity-service/internal/config"
	"github.com/learnloop/activity-service/internal/content"
	"github.com/learnloop/activity-service/internal/handlers"
	"github.com/learnloop/activity-service/internal/middleware"
	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/repositories/postgres"
	"github.com/learnloop/activity-service/internal/services"
	"github.com/learnloop/activity-service/internal/utils"
	"github.com/learnloop/activity-service/internal/validator"
	"github.com/learnloop/activity-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.Activity{}, &models.AttemptRecord{}); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	cacheService := cache.NewRedisCache(redisClient, slogger)
	fetcher := content.NewHTTPFetcher(cacheService, slogger, cfg.ContentCacheTTL)
	v := validator.New()

	activityRepo := postgres.NewActivityPostgreSQL(db)
	attemptRepo := postgres.NewAttemptPostgreSQL(db)

	activityService := services.NewActivityService(activityRepo, attemptRepo, fetcher, publisher, v, slogger)
	sessionService := services.NewSessionService(activityService, attemptRepo, cacheService, publisher, slogger, cfg.SessionTTL)
	exportService := services.NewExportService(activityService, attemptRepo, slogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(middleware.Auth(cfg.Auth, logger))

	handlerManager := handlers.NewHandlerManager(activityService, sessionService, exportService, attemptRepo, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting activity service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
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
		logger.Error("Forced shutdown", "error", err)
	}
}
