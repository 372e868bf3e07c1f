package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar_backend/database"
	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/config"
	"bazaar_backend/internal/email"
	"bazaar_backend/internal/handlers"
	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/notifier"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/routes"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/validator"
	"bazaar_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB); err != nil {
		// Без админа платформа неуправляема - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	deps := buildDependencies(cfg)
	ginRouter := SetupRouter(gormDB, deps)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	startWorkers(ctx, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: address, Handler: ginRouter}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// SetupRouter собирает полный gin-роутер. Вынесен отдельно, чтобы
// интеграционные тесты могли поднять приложение без Run().
func SetupRouter(gormDB *gorm.DB, deps services.Dependencies) *gin.Engine {
	serviceContainer := services.NewServiceContainer(deps)
	handlerContainer := handlers.NewHandlerContainer(serviceContainer, validator.New())

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(ginRouter, handlerContainer, gormDB, deps.Codec, deps.Denylist)
	return ginRouter
}

// buildDependencies инициализирует внешние зависимости сервисного слоя.
// Redis, RabbitMQ и SMTP опциональны: без них приложение деградирует
// (нет денайлиста, уведомления только в БД, письма не шлются), но работает.
func buildDependencies(cfg *config.Config) services.Dependencies {
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Redis denylist enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis is not configured, access token denylist disabled")
	}

	var publisher notifier.Publisher = notifier.NoopPublisher{}
	if cfg.AMQP.URL != "" {
		publisher = notifier.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		logger.Info("AMQP publisher enabled", "queue", cfg.AMQP.Queue)
	} else {
		logger.Warn("RabbitMQ is not configured, notifications stay in database only")
	}

	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		emailProvider = email.NewSMTPProvider(&email.Config{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    cfg.Email.UseTLS,
		})
	} else {
		logger.Warn("SMTP is not configured, emails disabled")
	}

	codec := auth.NewTokenCodec(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTTLMin)*time.Minute,
		time.Duration(cfg.JWT.RefreshTTLDays)*24*time.Hour,
		nil,
	)

	return services.Dependencies{
		Codec:         codec,
		Hasher:        auth.NewBcryptHasher(),
		Denylist:      auth.NewDenylist(redisClient),
		EmailProvider: emailProvider,
		Publisher:     publisher,
	}
}

func startWorkers(ctx context.Context, db *gorm.DB) {
	workers.NewTokenSweepWorker(db, repositories.NewRefreshTokenRepository(), time.Hour).Start(ctx)
	workers.NewVoucherExpiryWorker(db, repositories.NewVoucherRepository(), 15*time.Minute).Start(ctx)
	workers.NewNotificationCleanupWorker(db, repositories.NewNotificationRepository(), 24*time.Hour, 30*24*time.Hour).Start(ctx)
}

func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var admin models.User
	result := db.Where("email = ?", adminEmail).First(&admin)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hash, err := auth.NewBcryptHasher().Hash(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "email", adminEmail)
	return nil
}
