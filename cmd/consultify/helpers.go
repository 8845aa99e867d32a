package main

import (
	"context"
	"fmt"
	"os"

	"consultify/internal/backend"
	"consultify/internal/services"
)

// openBackend opens the configured store. Without AMQP, writes stay pending
// until the worker sweep picks them up.
func openBackend(ctx context.Context) (*backend.BackendResult, backend.Config, error) {
	cfg, err := backend.FromAppConfig(appConfig)
	if err != nil {
		return nil, backend.Config{}, err
	}
	be, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, cfg)
	if err != nil {
		return nil, backend.Config{}, err
	}
	return be, cfg, nil
}

func newPaymentService(be *backend.BackendResult) *services.PaymentService {
	return services.NewPaymentService(be.Store, be.Store, be.Publisher, services.PaymentServiceConfig{
		SummaryCacheTTL: appConfig.CacheTTL,
	})
}

func closeBackend(be *backend.BackendResult) {
	if err := be.Cleanup(); err != nil {
		logger.Error("Failed to close backend", "error", err)
	}
}

// writeFile creates path and hands it to write, removing it again on failure.
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
