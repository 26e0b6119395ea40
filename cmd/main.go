package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helios/internal/adapters/ai"
	"helios/internal/adapters/broker/alpaca"
	"helios/internal/adapters/config"
	"helios/internal/adapters/errors/noop"
	"helios/internal/adapters/errors/sentry"
	"helios/internal/adapters/redis"
	"helios/internal/agents"
	"helios/internal/api"
	"helios/internal/api/health"
	"helios/internal/metrics"
	"helios/internal/tools"
	"helios/internal/tools/builtin"
	"helios/internal/tools/shared"
	"helios/pkg/errors"
	"helios/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	// Broker
	brokerClient, err := alpaca.NewClient(alpaca.Config{
		APIKey:            cfg.Alpaca.APIKey,
		SecretKey:         cfg.Alpaca.SecretKey,
		Paper:             cfg.Alpaca.Paper,
		RequestsPerMinute: cfg.Alpaca.RequestsPerMinute,
	})
	if err != nil {
		log.Fatalf("Failed to initialize broker: %v", err)
	}
	log.Infow("Broker initialized", "broker", brokerClient.Name(), "paper", cfg.Alpaca.Paper)

	// Redis (optional market-data cache)
	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() { _ = cache.Close() }()
		log.Infow("Redis cache initialized", "addr", cfg.Redis.Addr())
	}

	// Tool registry
	registry := tools.NewRegistry()
	deps := shared.Deps{
		Broker: brokerClient,
		Log:    log,
	}
	if cache != nil {
		deps.Cache = cache
	}
	if err := builtin.RegisterAll(registry, deps); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	// Agent store and analysis runner
	store := agents.NewStore(registry, cfg.Agents.RejectDuplicates)

	aiClient, err := ai.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.RequestTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}

	runner := agents.NewRunner(store, registry, aiClient, agents.RunnerConfig{
		MaxIterations: cfg.Agents.MaxIterations,
		ModelRetries:  cfg.Agents.ModelRetries,
		RetryBackoff:  cfg.Agents.RetryBackoff,
		ToolTimeout:   cfg.Agents.ToolTimeout,
	})

	// HTTP server
	var cachePinger health.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthHandler := health.New(log, brokerClient, cachePinger, cfg.App.Name, cfg.Server.Version)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.Server.Version,
	}, registry, store, runner, healthHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown blocks until a termination signal, then drains the HTTP
// server and flushes the error tracker.
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	_ = errorTracker.Flush(flushCtx)
	log.Info("Shutdown complete")
}
