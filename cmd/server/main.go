package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/confecta/confecta/internal/config"
	finentity "github.com/confecta/confecta/internal/finance/entity"
	finhandler "github.com/confecta/confecta/internal/finance/handler"
	finrepo "github.com/confecta/confecta/internal/finance/repository"
	finsvc "github.com/confecta/confecta/internal/finance/service"
	"github.com/confecta/confecta/internal/middleware"
	notifentity "github.com/confecta/confecta/internal/notify/entity"
	notifhandler "github.com/confecta/confecta/internal/notify/handler"
	notifrepo "github.com/confecta/confecta/internal/notify/repository"
	notifsvc "github.com/confecta/confecta/internal/notify/service"
	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/handler"
	"github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/production/service"
	"github.com/confecta/confecta/internal/shared/clock"
	"github.com/confecta/confecta/internal/shared/sse"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting confecta service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.StageDefinition{},
		&entity.Product{},
		&entity.Faction{},
		&entity.ProductionOrder{},
		&entity.ProductionProgress{},
		&entity.StageProgress{},
		&entity.ActivityLog{},
		&finentity.FinancialPendency{},
		&finentity.FinancialPayment{},
		&finentity.OwnerSettings{},
		&notifentity.Notification{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unreachable, confirmation tokens and caching degraded", zap.Error(err))
	}

	clk := clock.System{}
	hub := sse.NewHub(zapLogger)

	// Production
	prodRepos := repository.NewRepositories(db)
	prodServices := service.NewServices(prodRepos, rdb, clk, zapLogger)
	prodHandlers := handler.NewHandlers(prodServices)

	// Finance
	finRepos := finrepo.NewRepositories(db)
	pendencySvc := finsvc.NewPendencyService(finRepos, rdb, cfg.Finance, clk, zapLogger)
	pendencyHandler := finhandler.NewPendencyHandler(pendencySvc)

	// Notifications
	notifRepo := notifrepo.NewNotificationRepository(db)
	notificationSvc := notifsvc.NewNotificationService(notifRepo, hub, clk, zapLogger)
	notificationHandler := notifhandler.NewNotificationHandler(notificationSvc)
	sseHandler := notifhandler.NewSSEHandler(hub)

	// Cross-module wiring: stage finalization feeds the ledger, order
	// completion feeds the notification store.
	prodServices.Progress.SetPendencyRecorder(pendencySvc)
	prodServices.Order.SetCompletionNotifier(notificationSvc)

	monitor := notifsvc.NewMonitor(prodRepos.Order, prodRepos.Progress, finRepos.Pendency,
		notifRepo, notificationSvc, rdb, cfg.Monitor, clk, zapLogger)
	if cfg.Monitor.Enabled {
		monitor.Start(context.Background())
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, cfg, prodHandlers, pendencyHandler, notificationHandler, sseHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	if cfg.Monitor.Enabled {
		monitor.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// repositories can map them to domain errors.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
