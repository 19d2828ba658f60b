package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edunexa-backend/internal/ai"
	"edunexa-backend/internal/auth"
	"edunexa-backend/internal/config"
	"edunexa-backend/internal/database"
	"edunexa-backend/internal/logger"
	"edunexa-backend/internal/telemetry"
	"edunexa-backend/middleware"
	"edunexa-backend/routes"
	"edunexa-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis
	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize tracing and metrics
	shutdownTracer, err := telemetry.InitTracer("edunexa-backend")
	if err != nil {
		log.Printf("Tracing disabled: %v", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// Initialize Gemini client
	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	// Stores and services
	fileStore := database.NewFileStore(db)
	userStore := database.NewUserStore(db)
	otpStore := auth.NewRedisOTPStore(redisClient, cfg.OTPTTL)
	emailSender := services.NewSMTPEmailSender(cfg)

	storage, err := services.NewFileStorage(cfg.FileStorageDir)
	if err != nil {
		log.Fatal("Failed to initialize file storage:", err)
	}

	fetcher := services.NewSourceFetcher(cfg.FetchTimeout)
	retryPolicy := ai.RetryPolicy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay}
	generation := services.NewGenerationService(fileStore, fetcher, geminiClient, retryPolicy, cfg.GenerationTimeout).
		WithUsageRecorder(func(ctx context.Context, userID string, tokens int) {
			metrics.RecordTokensUsed(int64(tokens), cfg.GeminiModel)
			if err := ai.RecordUsage(ctx, db, userID, tokens, cfg.QuotaDailyTokenLimit); err != nil {
				logger.Warn("failed to record token usage", "user_id", userID, "error", err)
			}
		})

	// Asynq client for background text extraction
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// Quota alert scheduler
	alertEvaluator := services.NewAlertEvaluator(cfg, emailSender, db)
	cronService := services.NewCronService(cfg, alertEvaluator)
	if err := cronService.Start(); err != nil {
		log.Printf("Quota alert scheduler disabled: %v", err)
	}
	defer cronService.Stop()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg)

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, userStore, otpStore, emailSender, authMiddleware)
	routes.SetupFileRoutes(router, cfg, fileStore, storage, asynqClient, authMiddleware)
	routes.SetupAIRoutes(router, generation, metrics, authMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
