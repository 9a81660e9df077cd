package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starcg-market-api/internal/cache"
	"starcg-market-api/internal/config"
	"starcg-market-api/internal/handler"
	applog "starcg-market-api/internal/log"
	"starcg-market-api/internal/market"
	"starcg-market-api/internal/metrics"
	"starcg-market-api/internal/middleware"
	"starcg-market-api/internal/notify"
	"starcg-market-api/internal/repository"
	"starcg-market-api/internal/router"
	"starcg-market-api/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	logger, err := applog.NewSugar(cfg.App.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Infow("Starting StarCG market API",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment)

	m, metricsHandler, err := metrics.Setup(cfg.App.Name)
	if err != nil {
		logger.Fatalw("Failed to set up metrics", "error", err)
	}

	// Redis is only dialed when the cache or the store needs it.
	var redisClient *redis.Client
	if cfg.Cache.Type == "redis" || cfg.Storage.Type == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		cancel()
		if err != nil {
			logger.Fatalw("Failed to connect to Redis", "addr", cfg.Cache.RedisAddress(), "error", err)
		}
		defer redisClient.Close()
		logger.Infow("Redis client initialized", "addr", cfg.Cache.RedisAddress())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := repository.Open(ctx, repository.Config{
		Type:            cfg.Storage.Type,
		SQLitePath:      cfg.Storage.Path,
		PostgresDSN:     cfg.Storage.PostgresDSN(),
		MySQLDSN:        cfg.Storage.MySQLDSN,
		MongoURI:        cfg.Storage.MongoURI,
		MongoDatabase:   cfg.Storage.MongoDatabase,
		MongoCollection: cfg.Storage.MongoCollection,
		KeyPrefix:       cfg.Storage.KeyPrefix,
		Redis:           redisClient,
	}, logger)
	cancel()
	if err != nil {
		logger.Fatalw("Failed to open storage", "type", cfg.Storage.Type, "error", err)
	}
	defer store.Close()
	logger.Infow("Storage initialized", "type", cfg.Storage.Type)

	resultCache := newResultCache(cfg, redisClient, logger, m)

	client := market.NewClient(market.ClientConfig{
		MarketURL:      cfg.Upstream.MarketURL(),
		HistoryURL:     cfg.Upstream.HistoryURL(),
		Timeout:        cfg.Upstream.Timeout,
		RequestsPerSec: cfg.Upstream.RequestsPerSec,
	}, logger, m)
	aggregator := market.NewAggregator(client, cfg.Upstream.MaxPages, logger)

	marketService := service.NewMarketService(client, aggregator, client, resultCache, logger)
	trackedService := service.NewTrackedService(store, logger)
	settingsService := service.NewSettingsService(store, logger)

	hub := notify.NewHub(cfg.Notify.AllowedOrigins, logger, m)
	notifier := notify.NewFanout(m, notify.NewLogNotifier(logger), hub)

	var scheduler *service.RefreshScheduler
	if cfg.Scheduler.Enabled {
		// The scheduler reads history straight from the client so a refresh
		// always sees fresh prices.
		scheduler = service.NewRefreshScheduler(
			trackedService,
			settingsService,
			client,
			notifier,
			service.RefreshConfig{
				TickInterval: cfg.Scheduler.TickInterval,
				TickTimeout:  cfg.Scheduler.TickTimeout,
				HistoryPages: cfg.Scheduler.HistoryPages,
			},
			logger,
			m,
		)
		scheduler.Start()
	}

	notificationHandler := handler.NewNotificationHandler(notifier, hub)

	r := router.New(router.Config{
		Handler:             handler.New(cfg.App.Name, cfg.App.Version, store),
		MarketHandler:       handler.NewMarketHandler(marketService),
		TrackedHandler:      handler.NewTrackedHandler(trackedService),
		SettingsHandler:     handler.NewSettingsHandler(settingsService),
		NotificationHandler: notificationHandler,
		CommandHandler: handler.NewCommandHandler(
			marketService, trackedService, settingsService, notificationHandler, cfg.App.Version, logger),
		AdminHandler: handler.NewAdminHandler(marketService, trackedService, scheduler, hub, cfg.Storage.Type),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthConfig{
			APIKeys:     cfg.App.APIKeys,
			PublicPaths: []string{"/api/v1/health", "/api/v1/ready"},
		}),
		MetricsHandler: metricsHandler,
		AllowedOrigins: cfg.Notify.AllowedOrigins,
		Logger:         logger,
		Metrics:        m,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infow("Server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("Shutting down server")

	// Stop the scheduler first so no tick writes during shutdown.
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("Server shutdown error", "error", err)
	}

	logger.Infow("Server stopped")
}

func newResultCache(cfg *config.Config, redisClient *redis.Client, logger *zap.SugaredLogger, m *metrics.Metrics) *cache.ResultCache {
	var marketSpace, historySpace cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		marketSpace = cache.NewRedisCache(redisClient, cfg.Storage.KeyPrefix+":cache:market", cfg.Cache.MaxEntries)
		historySpace = cache.NewRedisCache(redisClient, cfg.Storage.KeyPrefix+":cache:history", cfg.Cache.MaxEntries)
	default:
		marketSpace = cache.NewMemoryCache(cfg.Cache.MaxEntries)
		historySpace = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}
	logger.Infow("Result cache initialized",
		"type", cfg.Cache.Type,
		"market_ttl", cfg.Cache.MarketTTL,
		"history_ttl", cfg.Cache.HistoryTTL,
		"max_entries", cfg.Cache.MaxEntries)
	return cache.NewResultCache(marketSpace, historySpace, cfg.Cache.MarketTTL, cfg.Cache.HistoryTTL, logger, m)
}
