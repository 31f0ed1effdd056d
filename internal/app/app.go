package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/accountpulse/scoring-server/internal/api"
	"github.com/accountpulse/scoring-server/internal/config"
	"github.com/accountpulse/scoring-server/internal/events"
	"github.com/accountpulse/scoring-server/internal/repository"
	"github.com/accountpulse/scoring-server/internal/service"
	"github.com/accountpulse/scoring-server/internal/settings"
	"github.com/accountpulse/scoring-server/pkg/cache"
	dbbuilder "github.com/accountpulse/scoring-server/pkg/database"
	"github.com/accountpulse/scoring-server/pkg/httpserver"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	publisher  *events.Publisher
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDataSource),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized",
		zap.String("driver", cfg.DBDriver),
		zap.String("dsn", cfg.DBDataSource))

	if err := repository.AutoMigrate(dbPool, cfg.DBDriver); err != nil {
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("Event publisher initialized",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	signalRepo := repository.NewSignalRepository(dbPool, cfg.DBDriver)
	settingsRepo := repository.NewSettingsRepository(dbPool, cfg.DBDriver)

	settingsService := settings.NewService(settingsRepo, logger)
	healthService := service.NewHealthScoreService(signalRepo, settingsService.Health(), logger)
	churnService := service.NewChurnRiskService(signalRepo, settingsService.Churn(), logger)

	// *events.Publisher is nil when Kafka is unconfigured; pass a typed nil
	// through the interface only when the publisher exists.
	var scorePublisher api.ScorePublisher
	if publisher != nil {
		scorePublisher = publisher
	}

	handlers := api.NewHandlers(healthService, churnService, settingsService, cacheClient, scorePublisher, logger, cfg.CacheTTL)

	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithHandler(handlers.Router()),
		httpserver.WithLogging(true),
		httpserver.WithCORS(cfg.CORSOrigins),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http server: %w", err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		publisher:  publisher,
		httpServer: httpServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", zap.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("event publisher shutdown error", zap.Error(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}
