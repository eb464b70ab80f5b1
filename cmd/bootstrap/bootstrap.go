package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swasth-sathi/config"
	deliveryHttp "swasth-sathi/internal/delivery/http"
	"swasth-sathi/internal/delivery/http/handler"
	"swasth-sathi/internal/delivery/http/middleware"
	"swasth-sathi/internal/infrastructure/cache"
	"swasth-sathi/internal/infrastructure/captcha"
	"swasth-sathi/internal/infrastructure/database"
	"swasth-sathi/internal/infrastructure/gateway"
	"swasth-sathi/internal/infrastructure/mailer"
	"swasth-sathi/internal/repository"
	"swasth-sathi/internal/service"
	"swasth-sathi/internal/usecase"
	"swasth-sathi/pkg/jwt"
	"swasth-sathi/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Store       cache.Store
	Server      *http.Server
	ContentSync *service.ContentSyncService
	Sessions    *service.SessionHolder
	log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	// Setup logger
	log := setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Info("Configuration loaded successfully")

	// Apply schema before opening the pool
	if cfg.DB.RunMigrations {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected successfully")

	// Initialize key-value store
	store, err := newStore(cfg.Redis, log)
	if err != nil {
		return nil, err
	}

	app, err := Assemble(cfg, db, store, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ContentSync.Sync(ctx); err != nil {
		// reads fall through to the database until the next refresh
		log.Warnf("Failed to warm content cache: %+v", err)
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
	return logrus.StandardLogger()
}

func newStore(cfg config.RedisConfig, log *logrus.Logger) (cache.Store, error) {
	if cfg.Host == "" {
		log.Warn("REDIS_HOST not set, using in-process store")
		return cache.NewMemoryStore(), nil
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("Redis connected successfully")
	return cache.NewRedisStore(redisClient), nil
}

// Assemble wires every layer on top of an open database and store.
func Assemble(cfg *config.Config, db *gorm.DB, store cache.Store, log *logrus.Logger) (*App, error) {
	proxies, err := middleware.NewProxyTrust(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return nil, err
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	healthRecordRepo := repository.NewHealthRecordRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	diseaseRepo := repository.NewDiseaseRepository()
	vaccinationRepo := repository.NewVaccinationRepository()
	alertRepo := repository.NewHealthAlertRepository()

	// Initialize outbound clients
	aiGateway := gateway.NewAIGateway(cfg.AI, log)
	mailClient := mailer.NewClient(cfg.Email, log)
	captchaVerifier := captcha.NewVerifier(cfg.Captcha, log)

	// Initialize services
	tokenStore := service.NewTokenStore(store)
	otpService := service.NewOTPService(store, cfg.OTP)
	auditService := service.NewAuditService(db, log, auditLogRepo)
	sessions := service.NewSessionHolder(log)
	contentSync := service.NewContentSyncService(db, store, log, diseaseRepo, vaccinationRepo, alertRepo, cfg.Content.CacheTTL)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, jwtService, tokenStore, otpService, auditService, sessions, mailClient, captchaVerifier)
	healthRecordUsecase := usecase.NewHealthRecordUsecase(db, log, healthRecordRepo, auditService, store)
	contentUsecase := usecase.NewContentUsecase(log, contentSync)
	locationUsecase := usecase.NewLocationUsecase(log, store)
	chatUsecase := usecase.NewChatUsecase(log, aiGateway, healthRecordUsecase)
	contactUsecase := usecase.NewContactUsecase(log, mailClient, captchaVerifier, cfg.Email)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Session listeners
	sessions.Subscribe(auditService.OnSessionEvent)
	sessions.Subscribe(healthRecordUsecase.OnSessionEvent)

	// Initialize router
	router := deliveryHttp.NewRouter(deliveryHttp.RouterDeps{
		AuthHandler:         handler.NewAuthHandler(authUsecase, customValidator),
		HealthRecordHandler: handler.NewHealthRecordHandler(healthRecordUsecase, customValidator),
		ContentHandler:      handler.NewContentHandler(contentUsecase, locationUsecase),
		ChatHandler:         handler.NewChatHandler(chatUsecase, customValidator, log),
		ContactHandler:      handler.NewContactHandler(contactUsecase, customValidator),
		LocationHandler:     handler.NewLocationHandler(locationUsecase, customValidator),
		AuditLogHandler:     handler.NewAuditLogHandler(auditLogUsecase),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtService, tokenStore),
		CORSMiddleware:      middleware.NewCORSMiddleware(cfg.App.AllowOrigin),
		RequestLogger:       middleware.NewRequestLogger(log, proxies),
		ChatRateLimiter:     middleware.NewRateLimiter(store, log, proxies, "chat", cfg.RateLimit.ChatWindow, cfg.RateLimit.ChatCapacity),
		CodeRateLimiter:     middleware.NewRateLimiter(store, log, proxies, "code", cfg.RateLimit.CodeWindow, cfg.RateLimit.CodeCapacity),
	})

	return &App{
		Config: cfg,
		DB:     db,
		Store:  store,
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.App.Port),
			Handler:           router.Setup(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		ContentSync: contentSync,
		Sessions:    sessions,
		log:         log,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	app.ContentSync.Start()

	// Start server in goroutine
	go func() {
		app.log.Infof("Server starting on port %s", app.Config.App.Port)
		app.log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.log.Info("Server shutdown complete")
}

// Close stops background work and closes all connections
func (app *App) Close() {
	if app.ContentSync != nil {
		app.ContentSync.Stop()
	}
	if app.Sessions != nil {
		app.Sessions.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close key-value store
	if app.Store != nil {
		app.Store.Close()
	}
}
