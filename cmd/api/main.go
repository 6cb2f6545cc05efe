package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobtracker-backend/config"
	_ "go-jobtracker-backend/docs" // Important for Swagger
	v1 "go-jobtracker-backend/internal/delivery/http/v1"
	"go-jobtracker-backend/internal/repository/postgres"
	"go-jobtracker-backend/internal/usecase"
	"go-jobtracker-backend/migrations"
	"go-jobtracker-backend/pkg/audit"
	"go-jobtracker-backend/pkg/database"
	"go-jobtracker-backend/pkg/logger"
	"go-jobtracker-backend/pkg/redis"
	"go-jobtracker-backend/pkg/security"
	"go-jobtracker-backend/pkg/storage"
	"go-jobtracker-backend/pkg/token"
	"go-jobtracker-backend/pkg/validation"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
)

// @title           Job Tracker Backend API
// @version         1.0
// @description     Backend for tracking job applications, with auth, attachments and stats.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting job tracker backend", "port", cfg.Port)
	auditLogger := audit.Init("jobtracker-backend", os.Getenv("GIN_MODE"))
	defer auditLogger.Sync()

	// 3. Run Migrations
	migrationDB, err := sql.Open("pgx", cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to open migration connection", "error", err)
		os.Exit(1)
	}
	if err := migrations.Migrate(migrationDB); err != nil {
		logger.Log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	migrationDB.Close()

	// 4. Setup Database Pool
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 5. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
	}
	defer redis.Close()

	// 6. Setup File Storage
	var fileStore storage.FileStore
	switch cfg.StorageDriver {
	case "s3":
		s3Store, err := storage.NewS3Store(context.Background(), storage.NewS3ConfigFromEnv())
		if err != nil {
			logger.Log.Error("Failed to set up S3 storage", "error", err)
			os.Exit(1)
		}
		fileStore = s3Store
	default:
		localStore, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			logger.Log.Error("Failed to set up local storage", "error", err)
			os.Exit(1)
		}
		fileStore = localStore
	}

	// 7. Custom request validators
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	// 8. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 9. Setup UseCases
	tokens := token.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	})

	authUC := usecase.NewAuthUsecase(userRepo, tokens, loginTracker, cfg.BcryptCost)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, fileStore)
	attachmentUC := usecase.NewAttachmentUsecase(userRepo, applicationRepo, fileStore, cfg.MaxUploadBytes)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ApplicationUC: applicationUC,
		AttachmentUC:  attachmentUC,
		Tokens:        tokens,
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
