package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"FinSent/internal/api"
	"FinSent/internal/breaker"
	"FinSent/internal/cache"
	"FinSent/internal/collector"
	"FinSent/internal/config"
	"FinSent/internal/news"
	"FinSent/internal/observability"
	"FinSent/internal/scheduler"
	"FinSent/internal/sentiment"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("[WARN] %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	logger, err := observability.NewLogger(observability.LogOptions{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("[FATAL] init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("FinSent starting", zap.String("config", cfgPath))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	breakers := breaker.NewRegistry(breaker.Config{
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	}, logger, metrics)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		fetcher = collector.NewYahooFetcher(cfg.DataSource.ChartBaseURL, cfg.Proxy)
	}
	logger.Info("data source selected", zap.String("source", fetcher.Name()))

	store := cache.NewStore(cfg.Cache.Dir)
	col := collector.NewCollector(fetcher, store, breakers, logger, metrics)

	headlines := news.NewRSSFetcher(news.Options{
		BaseURL:           cfg.News.FeedBaseURL,
		ProxyURL:          cfg.Proxy,
		Timeout:           cfg.News.Timeout,
		RequestsPerSecond: cfg.News.RequestsPerSecond,
		Burst:             cfg.News.Burst,
	}, breakers, logger, metrics)

	analyzer := sentiment.NewVaderAnalyzer()
	scorer := sentiment.NewScorer(analyzer)
	aggregator := sentiment.NewAggregator(headlines, scorer, sentiment.CatalogLookup(cfg.Dashboard.Catalog), logger, metrics)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, aggregator, scheduler.Options{
		Watchlist:    cfg.Dashboard.Watchlist,
		Period:       cfg.DefaultPeriod(),
		Interval:     cfg.DefaultInterval(),
		MaxHeadlines: cfg.News.MaxHeadlines,
	}, logger, metrics)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, refreshing watchlist now")
		go sched.RefreshNow(ctx)
	}

	handler := api.NewHandler(api.Deps{
		Prices:    col,
		Headlines: headlines,
		Scorer:    scorer,
		Sentiment: aggregator,
		Refresher: sched,
		Breakers:  breakers,
		Logger:    logger,
		Metrics:   metrics,
	}, cfg)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(handler, cfg, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	logger.Info("FinSent stopped")
}
