// cmd/ai-agent/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ai-command-agent/internal/agent/cache"
	"ai-command-agent/internal/agent/history"
	"ai-command-agent/internal/agent/processor"
	"ai-command-agent/internal/agent/provider"
	"ai-command-agent/internal/common/config"
	"ai-command-agent/internal/common/database"
	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/common/observability"
	"ai-command-agent/internal/common/retry"
	"ai-command-agent/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting AI command agent...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Init Redis cache (optional) ---
	// No address configured, or an unreachable backend, degrades to
	// cache-disabled mode instead of failing startup.
	store := cache.NewStore(nil, config.GetDuration(cfg.Cache.TTL*1000), log)
	if cfg.Database.Redis.Address != "" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			return err
		}, 5, 2*time.Second, zapLog, "Redis initialization")

		if err != nil {
			zapLog.Warn("Redis unavailable, running with cache disabled", zap.Error(err))
		} else {
			store = cache.NewStore(redisClient.GetClient(), config.GetDuration(cfg.Cache.TTL*1000), log)
			defer redisClient.Close()
			zapLog.Info("Redis cache connected successfully")
		}
	} else {
		zapLog.Info("No Redis address configured, cache disabled")
	}

	// --- Init command history backend ---
	var repo history.Repository = history.NewMemoryRepository(cfg.History.MaxSize)
	if cfg.History.Backend == "postgres" {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			return err
		}, 5, 2*time.Second, zapLog, "PostgreSQL initialization")

		if err != nil {
			zapLog.Fatal("postgres history backend failed after retries", zap.Error(err))
		}
		defer pg.Close()
		repo = history.NewPostgresRepository(pg.GetDB())
		zapLog.Info("PostgreSQL history backend connected successfully")
	}

	// --- Build the provider registry ---
	opts := provider.Options{
		Timeout:       config.GetDuration(cfg.Providers.Timeout),
		HealthTimeout: config.GetDuration(cfg.Providers.HealthTimeout),
		Retry: retry.Policy{
			MaxAttempts: cfg.Providers.MaxRetries,
			BaseDelay:   config.GetDuration(cfg.Providers.RetryBaseDelay),
			MaxDelay:    config.GetDuration(cfg.Providers.RetryMaxDelay),
		},
	}

	registry := provider.NewRegistry(cfg.Providers.Default, log)
	if p := cfg.Providers.Google; p.Enabled() {
		registry.Register(provider.NewGoogle(p.APIKey, p.Endpoint, opts, log))
	}
	if p := cfg.Providers.OpenAI; p.Enabled() {
		registry.Register(provider.NewOpenAI(p.APIKey, p.Endpoint, p.Model, opts, log))
	}
	if p := cfg.Providers.Anthropic; p.Enabled() {
		registry.Register(provider.NewAnthropic(p.APIKey, p.Endpoint, p.Model, opts, log))
	}

	if registry.Count() == 0 {
		zapLog.Warn("No AI providers configured, all parse requests will fail")
	} else {
		zapLog.Info("AI providers registered",
			zap.Strings("providers", registry.Names()),
			zap.String("default", cfg.Providers.Default),
		)
	}

	proc := processor.New(registry, store, repo, obs, processor.Config{
		Version:      cfg.App.Version,
		MaxBatchSize: cfg.Limits.MaxBatchSize,
	}, log)

	srv := server.New(proc, cfg.Server.Addr(), log)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during server shutdown", zap.Error(err))
	}

	zapLog.Info("AI command agent stopped gracefully")
}
