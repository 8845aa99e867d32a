package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"consultify/internal/backend"
	"consultify/internal/cache"
	"consultify/internal/cli"
	apphttp "consultify/internal/http"
	"consultify/internal/log"
	"consultify/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Exit(cli.SetupLogger(nil, log.ComponentApp), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	be, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize backend", err)
	}

	payments := services.NewPaymentService(be.Store, be.Store, be.Publisher, services.PaymentServiceConfig{
		SummaryCacheTTL: cfg.CacheTTL,
	})

	caches := cache.NewManager()
	caches.Register(payments.SummaryCache())
	caches.StartCleanup(time.Minute)

	srv, err := apphttp.NewServer(apphttp.Dependencies{
		Payments:  payments,
		Customers: services.NewCustomerService(be.Store),
		Projects:  services.NewProjectService(be.Store, be.Store),
		Store:     be.Store,
	}, apphttp.Options{
		Addr:               ":" + cfg.Port,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		PageSize:           cfg.PageSize,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		cli.Exit(logger, "Failed to create HTTP server", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting consultify API",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"sync_enabled", be.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	shutdownCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var listenErr error
	go func() {
		if err, ok := <-serveErr; ok && err != nil {
			listenErr = err
			cancel()
		}
	}()

	err = cli.GracefulShutdown(shutdownCtx, logger, 30*time.Second,
		srv.Shutdown,
		func(context.Context) error {
			caches.Stop()
			return nil
		},
		func(context.Context) error { return be.Cleanup() },
	)
	if listenErr != nil {
		cli.Exit(logger, "Server error", listenErr)
	}
	if err != nil {
		cli.Exit(logger, "Shutdown finished with errors", err)
	}
}
