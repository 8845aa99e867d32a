package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"consultify/internal/amqp"
	"consultify/internal/backend"
	"consultify/internal/cli"
	"consultify/internal/log"
	"consultify/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Exit(cli.SetupLogger(nil, log.ComponentWorker), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting consultify-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	// The worker consumes; it never publishes.
	backendCfg.AMQPURL = ""

	factory := backend.NewFactory(logger.Logger)
	be, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize backend", err)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	sheet, err := factory.CreateSheet(ctx, backendCfg)
	if errors.Is(err, backend.ErrSheetNotConfigured) {
		logger.Warn("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, nothing to sync")
		return
	}
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return
	}

	syncWorker := worker.NewSyncWorker(be.Store, sheet, sheet, cfg.SyncBatchSize)
	scheduler, err := worker.NewScheduler(syncWorker, cfg.SyncSchedule)
	if err != nil {
		logger.Error("Invalid sync schedule", log.FieldError, err)
		return
	}

	// On startup, process any pending payments that might have been missed.
	logger.Info("Performing startup sync check...")
	if _, err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on the scheduled sweep", log.FieldError, err)
		} else {
			defer consumer.Close()
			g.Go(func() error {
				return consumer.ConsumePaymentSync(gctx, syncWorker.HandleMessage)
			})
		}
	} else {
		logger.Info("AMQP_URL not set, relying on the scheduled sweep")
	}

	logger.Info("Worker running",
		"schedule", cfg.SyncSchedule,
		"batch_size", cfg.SyncBatchSize)

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}

	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
