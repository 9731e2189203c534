package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/auth"
	"github.com/kotoba-lab/learning-service/internal/cache"
	"github.com/kotoba-lab/learning-service/internal/config"
	"github.com/kotoba-lab/learning-service/internal/handlers"
	"github.com/kotoba-lab/learning-service/internal/repositories/postgres"
	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
	"github.com/kotoba-lab/learning-service/internal/validator"
	"github.com/kotoba-lab/learning-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	var slogger *slog.Logger
	if cfg.Environment == "production" {
		slogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		gin.SetMode(gin.ReleaseMode)
	} else {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logger := utils.NewSlogLogger(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	v := validator.New()
	cacheService := cache.NewRedisCache(redisClient, logger)

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:      repo,
		Cache:     cacheService,
		Publisher: publisher,
		Logger:    slogger,
		Validator: v,
		DeckTTL:   cfg.DeckTTL,
	})

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Endpoint:     cfg.Casdoor.Endpoint,
		ClientID:     cfg.Casdoor.ClientID,
		ClientSecret: cfg.Casdoor.ClientSecret,
		Certificate:  cfg.Casdoor.Certificate,
		Organization: cfg.Casdoor.Organization,
		Application:  cfg.Casdoor.Application,
	}, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, verifier, v, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
