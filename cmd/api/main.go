package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/campuspool/carpool/internal/api/handlers"
	"github.com/campuspool/carpool/internal/api/routes"
	"github.com/campuspool/carpool/internal/config"
	"github.com/campuspool/carpool/internal/otp"
	"github.com/campuspool/carpool/internal/service/auth"
	"github.com/campuspool/carpool/internal/service/booking"
	"github.com/campuspool/carpool/internal/service/chat"
	"github.com/campuspool/carpool/internal/service/notifications"
	"github.com/campuspool/carpool/internal/service/rides"
	"github.com/campuspool/carpool/internal/service/vehicles"
	"github.com/campuspool/carpool/pkg/cache"
	"github.com/campuspool/carpool/pkg/database"
	"github.com/campuspool/carpool/pkg/logger"
	"github.com/campuspool/carpool/pkg/monitoring"
	"github.com/campuspool/carpool/pkg/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting CampusPool carpool service",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize New Relic", logger.Err(err))
	}
	if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized",
			logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)

	appLogger.Info("Connected to Redis successfully")

	// Initialize PostgreSQL
	postgresDB, err := database.NewPostgresDB(database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		DBName:      cfg.Database.Name,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MaxIdle:     cfg.Database.MaxIdle,
		MaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresDB.Close()

	appLogger.Info("Connected to PostgreSQL successfully")

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()

	// Initialize services
	otpStore := otp.NewStore(redisClient, cfg.OTP.CodeTTL, cfg.OTP.VerifiedTTL)
	authSvc := auth.NewService(postgresDB, otpStore, &auth.LogEmailSender{Logger: appLogger}, appLogger, auth.Config{
		JWTSecret: []byte(cfg.JWT.Secret),
		JWTExpiry: cfg.JWT.Expiry,
	})
	vehicleSvc := vehicles.NewService(postgresDB, appLogger)
	rideSvc := rides.NewService(postgresDB, appLogger)
	bookingSvc := booking.NewService(postgresDB, appLogger)
	chatSvc := chat.NewService(postgresDB, wsHub, appLogger)
	notificationSvc := notifications.NewService(postgresDB, appLogger)

	// Initialize handlers with dependencies
	h := handlers.NewHandlers(authSvc, vehicleSvc, rideSvc, bookingSvc, chatSvc, notificationSvc,
		wsHub, nrApp, appLogger)

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup all routes
	var nrApplication *newrelic.Application
	if nrApp.IsEnabled() {
		nrApplication = nrApp.Application
	}
	routes.SetupRoutes(router, h, nrApplication, []byte(cfg.JWT.Secret))

	appLogger.Info("Routes configured successfully")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}
