// Package cli holds the start-up steps shared by cmd/consultify,
// cmd/consultify-api and cmd/consultify-worker, plus the terminal rendering
// used by the command-line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"consultify/internal/config"
	"consultify/internal/log"
)

// SetupLogger builds the process logger from cfg and installs it as the slog
// default. An unparsable level falls back to info; Validate reports it.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Component = component
	if cfg != nil {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			logCfg.Level = level
		}
		logCfg.Format = cfg.LogFormat
	}
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Exit logs err and terminates the process with status 1.
func Exit(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GracefulShutdown waits for ctx to end, then runs each cleanup step within
// timeout. Steps run in order; failures are logged and do not stop the rest.
func GracefulShutdown(ctx context.Context, logger *log.Logger, timeout time.Duration, steps ...func(context.Context) error) error {
	<-ctx.Done()
	logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var failed int
	for i, step := range steps {
		if step == nil {
			continue
		}
		if err := step(shutdownCtx); err != nil {
			failed++
			logger.Error("Shutdown step failed", "step", i, log.FieldError, err)
		}
	}

	if shutdownCtx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
		return shutdownCtx.Err()
	}
	if failed > 0 {
		return fmt.Errorf("%d shutdown step(s) failed", failed)
	}
	logger.Info("Shutdown complete")
	return nil
}
