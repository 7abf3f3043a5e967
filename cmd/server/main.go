package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/config"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/jobs"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/models"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/infrastructure/repositories"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/handlers"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/middleware"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/upstream"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/usecases"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/logger"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis. The key cache is optional; the API runs without it
	// when Redis is unreachable.
	var keyCache usecases.KeyLookupCache
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(context.Background(), "Redis unavailable, key lookup cache disabled", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Redis initialized")
		keyCache = redis.NewKeyCache(cfg.Redis.KeyTTL)
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(&models.ApiKey{}, &models.ApiKeyDailyUsage{}, &models.UsageLog{}); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize repositories
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	usageLogRepo := repositories.NewUsageLogRepository(db)

	// Initialize usecases
	ledger := usecases.NewQuotaLedger(apiKeyRepo)
	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, ledger, keyCache, cfg.Quota.DefaultPerDay)

	pool := make([]upstream.Credential, len(cfg.Gemini.APIKeys))
	for i, key := range cfg.Gemini.APIKeys {
		pool[i] = upstream.Credential(key)
	}
	policy := upstream.RetryPolicy{
		MaxAttempts:        cfg.Gemini.MaxAttempts,
		BaseDelay:          cfg.Gemini.BaseDelay,
		ExponentialBackoff: true,
	}
	predictUsecase := usecases.NewPredictUsecase(upstream.NewGeminiClient(cfg.Gemini.Model), pool, policy)

	// Start background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	retentionJob := jobs.NewUsageLogRetentionJob(usageLogRepo, cfg.Quota.UsageLogRetention)
	go retentionJob.Start(jobCtx)

	// Initialize handlers
	apiKeyHandler := handlers.NewApiKeyHandler(apiKeyUsecase)
	predictHandler := handlers.NewPredictHandler(predictUsecase)
	usageHandler := handlers.NewUsageHandler(usageLogRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerAPIV1Routes(r, routeDeps{
		apiKeyHandler:         apiKeyHandler,
		predictHandler:        predictHandler,
		usageHandler:          usageHandler,
		healthHandler:         healthHandler,
		accessGuardMiddleware: middleware.AccessGuardMiddleware(apiKeyUsecase, usageLogRepo),
		adminAuthMiddleware:   middleware.AdminAuthMiddleware(cfg.Admin.Token),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		retentionJob.Stop()
		cancelJobs()
	}()

	// Start server
	log.Printf("PlantSaathi API starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
