// Package app provides the main application lifecycle management for the
// feedgate service.
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

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/feedgate/internal/api"
	"github.com/jonesrussell/feedgate/internal/cache"
	"github.com/jonesrussell/feedgate/internal/compliance"
	"github.com/jonesrussell/feedgate/internal/config"
	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/metrics"
	"github.com/jonesrussell/feedgate/internal/monitor"
	"github.com/jonesrussell/feedgate/internal/protocol"
	"github.com/jonesrussell/feedgate/internal/publisher"
	"github.com/jonesrussell/feedgate/internal/queue"
	"github.com/jonesrussell/feedgate/internal/registry"
	"github.com/jonesrussell/feedgate/internal/worker"
)

const (
	// DefaultShutdownTimeout is the default timeout for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second

	redisPingTimeout = 5 * time.Second
	idleTimeout      = 60 * time.Second
)

// App represents the feedgate application with all its dependencies
type App struct {
	config      *config.Config
	logger      logger.Logger
	db          *database.Repository
	sqlDB       *sqlx.DB
	redisClient redis.UniversalClient
	worker      *worker.PublishWorker
	monitor     *monitor.Monitor
	httpServer  *http.Server
	version     string
}

// Options contains configuration for creating a new App
type Options struct {
	ConfigPath string
	Version    string
}

// New creates a new App instance with all dependencies initialized
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	appLogger = appLogger.With(
		logger.String("service", "feedgate"),
		logger.String("version", opts.Version),
	)

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	repo := database.NewRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
		_ = db.Close()
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to Redis: %w", pingErr)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	destCache := cache.NewRedisCache(redisClient, cfg.Cache.KeyPrefix, appLogger)
	reg := registry.NewRegistry(repo, destCache, cfg.Cache.TTL, appLogger)

	gateway := protocol.NewGateway(appLogger)
	service := publisher.NewService(repo, reg, gateway, m, appLogger)
	engine := compliance.NewEngine(repo, appLogger)

	jobQueue := queue.NewQueue(redisClient, cfg.Worker.QueueKey)
	publishWorker := worker.NewPublishWorker(jobQueue, repo, service, worker.Config{
		MaxAttempts:             cfg.Worker.MaxAttempts,
		RetryProtocolRejections: cfg.Worker.RetryProtocolRejections,
		DequeueTimeout:          cfg.Worker.DequeueTimeout,
		PublishTimeout:          cfg.Worker.PublishTimeout,
	}, appLogger)

	healthMonitor := monitor.NewMonitor(repo, reg, monitor.NewLogNotifier(appLogger), monitor.Config{
		FailureThreshold: cfg.Monitoring.FailureThreshold,
		MinSuccessRate:   cfg.Monitoring.MinSuccessRate,
		CheckInterval:    cfg.Monitoring.CheckInterval,
	}, appLogger)

	router := api.NewRouter(repo, reg, engine, service, healthMonitor, jobQueue,
		redisClient, promRegistry, cfg, appLogger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &App{
		config:      cfg,
		logger:      appLogger,
		db:          repo,
		sqlDB:       db,
		redisClient: redisClient,
		worker:      publishWorker,
		monitor:     healthMonitor,
		httpServer:  httpServer,
		version:     opts.Version,
	}, nil
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	a.worker.Start(workerCtx)
	a.monitor.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			logger.String("address", a.config.Server.Address),
			logger.Bool("debug", a.config.Debug))
		serverErr <- a.httpServer.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		a.logger.Info("shutting down gracefully",
			logger.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", logger.Error(err))
			runErr = err
		}
	case <-ctx.Done():
	}

	a.shutdown(workerCancel)
	a.logger.Info("service stopped")
	return runErr
}

// shutdown stops the background workers and the HTTP server.
func (a *App) shutdown(workerCancel context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("HTTP server stopped")
	}

	a.worker.Stop()
	a.monitor.Stop()
	workerCancel()
}

// Close cleans up resources
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close Redis client", logger.Error(err))
		}
	}
	if err := database.Close(a.sqlDB); err != nil {
		a.logger.Warn("failed to close database", logger.Error(err))
	}
	return a.logger.Sync()
}

// Logger returns the application logger
func (a *App) Logger() logger.Logger {
	return a.logger
}
