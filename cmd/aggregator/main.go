package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"news_aggregator/internal/aggregator"
	"news_aggregator/internal/api"
	"news_aggregator/internal/bootstrap"
	"news_aggregator/internal/catalog"
	"news_aggregator/internal/config"
	"news_aggregator/internal/domain"
	"news_aggregator/internal/fetch"
	"news_aggregator/internal/publisher"
	"news_aggregator/internal/scheduler"
	"news_aggregator/internal/service"
	"news_aggregator/internal/source"
	aggregatorsrc "news_aggregator/internal/source/aggregator"
	"news_aggregator/internal/source/headline"
	"news_aggregator/internal/source/rss"
	"news_aggregator/internal/source/structured"
	"news_aggregator/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("aggregator stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("aggregator stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := source.NewRegistry(cfg.Descriptors())
	if err != nil {
		return fmt.Errorf("build source registry: %w", err)
	}

	var (
		backend catalog.Backend
		states  service.SourceStateStore
		pub     service.Publisher
	)

	if cfg.Database.Enabled {
		db, err := postgres.Connect(ctx, cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("connected to database")

		backend = postgres.NewMirror(db, logger)
		stateStore := postgres.NewSourceStateStore(db)
		states = stateStore

		persisted, err := stateStore.List(ctx)
		if err != nil {
			logger.Warn("failed to restore source states", "error", err)
		} else {
			registry.Restore(persisted)
		}
	}

	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	limiter := fetch.NewHostLimiter(cfg.Fetch.HostInterval)
	direct := fetch.NewHTTPTransport(cfg.Fetch.UserAgent, limiter)
	var proxy fetch.Transport
	if cfg.Fetch.ProxyURL != "" {
		proxy = fetch.NewProxyTransport(cfg.Fetch.ProxyURL, direct)
	}

	rssAdapter := rss.New()
	adapters := map[domain.Protocol]fetch.Adapter{
		domain.ProtocolRSS:           rssAdapter,
		domain.ProtocolAggregatorRSS: aggregatorsrc.New(rssAdapter),
		domain.ProtocolHeadlineAPI:   headline.New(),
		domain.ProtocolStructuredAPI: structured.New(logger),
	}

	fetcher := fetch.NewResilient(adapters, direct, proxy, registry, fetch.Options{
		BaseDelay:      cfg.Fetch.Retry.InitialBackoff,
		MaxDelay:       cfg.Fetch.Retry.MaxBackoff,
		DefaultTimeout: cfg.Fetch.DefaultTimeout,
		DefaultRetries: cfg.Fetch.Retries(),
	}, logger)

	orchestrator := aggregator.NewOrchestrator(fetcher, aggregator.Options{
		MaxConcurrency:      cfg.Fetch.MaxConcurrency,
		NearDuplicateWindow: cfg.Sync.NearDuplicateWindow,
		FeaturedPriority:    cfg.Sync.FeaturedPriority,
		BreakingKeywords:    cfg.Sync.BreakingKeywords,
	}, logger)

	store := catalog.NewStore(backend, catalog.Options{
		TrendingViews: cfg.Sync.TrendingViews,
		MaxArticles:   cfg.Sync.MaxArticles,
	}, logger)
	if loaded, err := store.Load(ctx); err != nil {
		logger.Warn("failed to warm catalog from database", "error", err)
	} else if loaded > 0 {
		logger.Info("catalog warmed from database", "articles", loaded)
	}

	ingest := service.NewIngestService(orchestrator, store, registry, states, pub, logger)

	sched := scheduler.NewScheduler(ingest, registry, scheduler.Options{
		Interval:   cfg.Sync.Interval,
		RunOnStart: cfg.Sync.RunOnStart,
		RunTimeout: cfg.Sync.RunTimeout,
	}, logger)

	initializer := bootstrap.NewInitializer(orchestrator, store, registry, bootstrap.Options{
		SeedTimeout:      cfg.Bootstrap.SeedTimeout,
		PlaceholderCount: cfg.Bootstrap.PlaceholderCount,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(store, registry, sched, initializer, api.Options{
		AdminToken: cfg.Server.AdminToken,
		ReadyWait:  cfg.Server.ReadyWait,
		Badges: api.Badges{
			VeryRecent: cfg.Badges.VeryRecent,
			Recent:     cfg.Badges.Recent,
			Today:      cfg.Badges.Today,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("starting news aggregator",
		"sources", len(registry.All()),
		"active", len(registry.Active()),
		"interval", cfg.Sync.Interval,
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Enabled,
		"rabbitmq", cfg.RabbitMQ.Enabled,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		initializer.Run(gctx)
		if gctx.Err() != nil {
			return nil
		}
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
