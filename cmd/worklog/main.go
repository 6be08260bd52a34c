package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"worklog/internal/backend"
	"worklog/internal/cache"
	"worklog/internal/chat"
	"worklog/internal/cli"
	"worklog/internal/core"
	apphttp "worklog/internal/http"
	"worklog/internal/log"
	"worklog/internal/services"
	"worklog/internal/store"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	data := cli.OpenBackend(startCtx, logger.WithComponent(log.ComponentBackend), backendCfg)
	startCancel()

	var publisher services.Publisher
	amqpClient := backend.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if amqpClient != nil {
		publisher = amqpClient
	}

	ledger := services.NewLedgerService(data.Store, publisher, logger.WithComponent(log.ComponentLedger))
	reports := services.NewReportService(data.Store, logger)
	ledger.OnChange(reports.Invalidate)

	labels := services.NewLabelService(data.Store, cfg.LabelCacheTTL)
	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	if c := labels.Cache(); c != nil {
		caches.Register(c)
		caches.StartCleanup(time.Minute)
	}

	deps := apphttp.Deps{
		Ledger:  ledger,
		Reports: reports,
		Labels:  labels,
		Ready:   readiness(data.Store),
	}
	if cfg.ChatEnabled() {
		deps.Chat = chat.NewClient(chat.Config{
			URL:     cfg.ChatAPIURL,
			APIKey:  cfg.ChatAPIKey,
			Model:   cfg.ChatModel,
			Timeout: cfg.ChatTimeout,
		})
		logger.Info("Chat assistant enabled", "model", cfg.ChatModel)
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
		if err := data.Close(); err != nil {
			logger.Warn("Backend close error", log.FieldError, err.Error())
		}
	})

	// Warm the snapshot; a failure here is retried lazily on first read.
	if err := reports.Refresh(ctx); err != nil {
		logger.Warn("Initial report refresh failed", log.FieldError, err.Error())
	}

	logger.Info("Starting worklog server", "port", cfg.Port, "backend", backendCfg.Type.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// readiness pings stores that support it and otherwise reads one label list.
func readiness(s store.Store) func(context.Context) error {
	if p, ok := s.(pinger); ok {
		return p.Ping
	}
	return func(ctx context.Context) error {
		_, err := s.Labels(ctx, core.Tools)
		return err
	}
}
