package app

import (
	"context"
	"fmt"
	"time"

	"placement_backend/database"
	"placement_backend/internal/auth"
	"placement_backend/internal/config"
	"placement_backend/internal/email"
	"placement_backend/internal/events"
	"placement_backend/internal/handlers"
	"placement_backend/internal/logger"
	"placement_backend/internal/middleware"
	"placement_backend/internal/routes"
	"placement_backend/internal/services"
	"placement_backend/internal/storage"
	"placement_backend/internal/validator"
	"placement_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(!cfg.IsProduction())

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Server.Env == "development")
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected")

	serviceContainer, ginRouter := SetupRouter(cfg, gormDB)

	if err := serviceContainer.AuthService.SeedAdmin(context.Background(), gormDB, cfg.FirstAdmin.Email, cfg.FirstAdmin.Password); err != nil {
		// без администратора некому модерировать вакансии
		logger.Fatal("Failed to seed first admin", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает сервисы, хэндлеры и маршруты поверх готового подключения к БД
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*services.ServiceContainer, *gin.Engine) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute, cfg.JWT.Issuer)
	guard := auth.NewGuard(tokens)

	// 1. Сервисы
	serviceContainer := services.NewServiceContainer(services.Dependencies{
		Tokens:   tokens,
		Guard:    guard,
		Storage:  storageInstance,
		Notifier: initializeNotifier(cfg),
		Upload:   cfg.Upload,
	})

	// 2. Хэндлеры
	limiter := initializeLimiter(cfg)
	baseHandler := handlers.NewBaseHandler(validator.New(), handlers.Middlewares{
		Auth:        middleware.AuthMiddleware(guard),
		LoginLimit:  middleware.RateLimit(limiter, middleware.ByClientIP("login"), cfg.RateLimit.LoginPerMinute, time.Minute),
		UploadLimit: middleware.RateLimit(limiter, middleware.ByAccount("upload"), cfg.RateLimit.UploadPerMinute, time.Minute),
	}, maxUploadSize(cfg.Upload))
	appHandlers := handlers.NewAppHandlers(baseHandler, serviceContainer)

	// 3. Gin и маршруты
	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, !cfg.IsProduction())

	return serviceContainer, ginRouter
}

// initializeNotifier - письма и события уходят в фоне, без SMTP письма пишутся в лог
func initializeNotifier(cfg *config.Config) email.Notifier {
	templates, err := email.NewTemplateManager()
	if err != nil {
		logger.Fatal("Failed to load email templates", "error", err)
	}

	var provider email.Provider
	if cfg.Email.Enabled {
		provider = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    cfg.Email.UseTLS,
		})
		if err := provider.Validate(); err != nil {
			logger.Fatal("Invalid SMTP configuration", "error", err)
		}
	} else {
		logger.Warn("Email delivery is disabled, using mock provider")
		provider = email.NewMockProvider()
	}

	receivers := email.MultiNotifier{email.NewEmailNotifier(provider, templates)}

	if cfg.Broker.URL != "" {
		publisher, err := events.Dial(cfg.Broker.URL, cfg.Broker.Queue)
		if err != nil {
			// брокер не обязателен: письма уходят и без него
			logger.Warn("Event broker unavailable, events are not published", "error", err)
		} else {
			logger.Info("Publishing events to broker", "queue", cfg.Broker.Queue)
			receivers = append(receivers, publisher)
		}
	}

	return email.NewAsyncNotifier(receivers)
}

// initializeLimiter - redis для нескольких инстансов, иначе счетчики в памяти
func initializeLimiter(cfg *config.Config) middleware.Limiter {
	if cfg.Redis.Addr == "" {
		logger.Info("Rate limiter uses in-memory buckets")
		return middleware.NewRateLimiter()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory rate limiter", "addr", cfg.Redis.Addr, "error", err)
		_ = client.Close()
		return middleware.NewRateLimiter()
	}

	logger.Info("Rate limiter uses redis", "addr", cfg.Redis.Addr)
	return middleware.NewRedisLimiter(client)
}

func maxUploadSize(rules config.UploadRules) int64 {
	if rules.CVMaxSize > rules.LogoMaxSize {
		return rules.CVMaxSize
	}
	return rules.LogoMaxSize
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
