package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hotspot-service/internal/clients"
	"hotspot-service/internal/config"
	"hotspot-service/internal/events"
	"hotspot-service/internal/handlers"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/middleware"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
	"hotspot-service/internal/services"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	if err := autoMigrate(db, logger); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	rdb, err := initRedis(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	linkGrantRepo := repository.NewLinkGrantRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)

	// Collaborator clients
	smsClient := clients.NewSmsClient(cfg.Sms.GatewayURL, cfg.Sms.APIKey, cfg.Sms.SenderID, logger)
	radiusClient := clients.NewRadiusClient(cfg.Radius.BaseURL, cfg.Radius.APIKey, logger)

	// Services
	flowStore := services.NewRedisFlowStore(rdb, cfg.Flow.TokenSecret, cfg.GetFlowTTL())
	otpService := services.NewOtpService(cfg, otpRepo, rateLimitRepo, smsClient, logger)
	sessionService := services.NewSessionService(accountRepo, logger)
	loginService := services.NewLoginService(cfg, accountRepo, otpService, sessionService, flowStore, radiusClient, smsClient, logger)
	linkService := services.NewLinkService(linkGrantRepo, radiusClient, logger)
	federationService := services.NewFederationService(operatorRepo, accountRepo, logger)
	accountService := services.NewAccountService(accountRepo, sessionService, smsClient, radiusClient, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	hotspotHandler := handlers.NewHotspotHandler(loginService, sessionService, federationService)
	linkHandler := handlers.NewLinkHandler(linkService)
	accountHandler := handlers.NewAccountHandler(accountService)

	// Initialize NATS events publisher (non-blocking)
	go func() {
		if err := events.InitPublisher(logger); err != nil {
			logger.Warnf("Failed to initialize events publisher: %v (events won't be published)", err)
		}
	}()

	// Background cleanup of expired challenges, grants and rate limit windows
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	go runCleanup(cleanupCtx, logger, otpRepo, linkGrantRepo, rateLimitRepo)

	router := setupRouter(cfg, logger, healthHandler, hotspotHandler, linkHandler, accountHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Starting hotspot-service on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	stopCleanup()
	events.GetPublisher().Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	healthHandler *handlers.HealthHandler,
	hotspotHandler *handlers.HotspotHandler,
	linkHandler *handlers.LinkHandler,
	accountHandler *handlers.AccountHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(metrics.Middleware())

	// Health endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes (with API key authentication)
	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(cfg.Security.APIKey))
	v1.Use(middleware.TenantExtraction())
	{
		// OTP login flow
		v1.POST("/hotspot/otp/request", hotspotHandler.RequestOtp)
		v1.POST("/hotspot/otp/verify", hotspotHandler.VerifyOtp)
		v1.POST("/hotspot/otp/resend", hotspotHandler.ResendOtp)
		v1.POST("/hotspot/login/force", hotspotHandler.ForceLogin)

		// Session lifecycle
		v1.POST("/hotspot/session/validate", hotspotHandler.ValidateSession)
		v1.POST("/hotspot/session/logout", hotspotHandler.Logout)
		v1.GET("/hotspot/device", hotspotHandler.DeviceFingerprint)

		// Link login grants
		v1.POST("/hotspot/link/generate", linkHandler.Generate)
		v1.POST("/hotspot/link/verify", linkHandler.Verify)

		// Federated operator lookup
		v1.GET("/hotspot/federation/lookup", hotspotHandler.CrossRadiusLookup)

		// Account lifecycle
		v1.POST("/hotspot/accounts", accountHandler.Register)
		v1.POST("/hotspot/accounts/:id/activate", accountHandler.Activate)
		v1.POST("/hotspot/accounts/renew", accountHandler.Renew)
		v1.POST("/hotspot/accounts/suspend", accountHandler.Suspend)
	}

	return router
}

func runCleanup(
	ctx context.Context,
	logger *logrus.Logger,
	otpRepo *repository.OtpRepository,
	linkGrantRepo *repository.LinkGrantRepository,
	rateLimitRepo *repository.RateLimitRepository,
) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := otpRepo.DeleteExpired(ctx); err != nil {
				logger.Warnf("Failed to clean up expired OTP challenges: %v", err)
			}
			if err := linkGrantRepo.DeleteExpired(ctx); err != nil {
				logger.Warnf("Failed to clean up expired link grants: %v", err)
			}
			if err := rateLimitRepo.DeleteExpired(ctx); err != nil {
				logger.Warnf("Failed to clean up stale rate limit windows: %v", err)
			}
		}
	}
}

func autoMigrate(db *gorm.DB, logger *logrus.Logger) error {
	logger.Info("Starting database migration...")

	// Enable UUID extension in PostgreSQL
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		logger.Warnf("Failed to create uuid-ossp extension: %v", err)
	}

	modelsToMigrate := []interface{}{
		&models.HotspotAccount{},
		&models.OtpChallenge{},
		&models.LinkLoginGrant{},
		&models.Operator{},
		&models.RateLimit{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	logger.Info("Database migration completed successfully")
	return nil
}

func initDatabase(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}
