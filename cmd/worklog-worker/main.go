package main

import (
	"context"
	"errors"
	"os"
	"time"

	"worklog/internal/amqp"
	"worklog/internal/backend"
	"worklog/internal/cli"
	"worklog/internal/log"
	"worklog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Mirror configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Starting worklog-worker")

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	targetCfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid spreadsheet configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	backendLogger := logger.WithComponent(log.ComponentBackend)
	source := cli.OpenBackend(startCtx, backendLogger, sourceCfg)
	target := cli.OpenBackend(startCtx, backendLogger, targetCfg)
	startCancel()

	mirror := worker.NewMirrorWorker(source.Store, target.Store, cfg.MirrorInterval, logger)

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled, mirroring on the interval only", "interval", cfg.MirrorInterval.String())
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := mirror.Stop(ctx); err != nil {
			logger.Warn("Mirror worker stop error", log.FieldError, err.Error())
		}
		if consumer != nil {
			consumer.Close()
		}
		source.Close()
		target.Close()
	})

	if err := mirror.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", log.FieldError, err.Error())
		os.Exit(1)
	}

	if consumer != nil {
		go func() {
			err := consumer.ConsumeCollectionChanged(ctx, mirror.HandleCollectionChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption stopped", log.FieldError, err.Error())
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
