package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"consultify/internal/amqp"
	"consultify/internal/ports"
	"consultify/internal/sheets"
	gsheet "consultify/internal/sheets/google"
	sheetmem "consultify/internal/sheets/memory"
	"consultify/internal/storage"
	"consultify/internal/storage/memory"
)

// ErrSheetNotConfigured is returned by CreateSheet without a spreadsheet id.
var ErrSheetNotConfigured = errors.New("no spreadsheet configured")

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store and, when AMQP_URL is set, a publisher. A
// broker that cannot be reached is logged and skipped; writes are still
// saved and the sweep picks them up later.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", "error", err)
			amqpClient = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = amqpClient
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if amqpClient != nil {
			errs = append(errs, amqpClient.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type,
		"amqp_enabled", result.Publisher != nil)
	return result, nil
}

func (f *DefaultFactory) createStore(config Config) (ports.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		return repo, nil
	case MemoryBackend:
		f.logger.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreateSheet connects to the configured Google spreadsheet. The memory
// backend without a spreadsheet gets an in-process sheet so the whole sync
// path can run locally.
func (f *DefaultFactory) CreateSheet(ctx context.Context, config Config) (sheets.PaymentSheet, error) {
	if config.GoogleSpreadsheetID == "" {
		if config.Type == MemoryBackend {
			f.logger.WarnContext(ctx, "Using in-memory sheet, synced rows are lost on restart")
			return sheetmem.New(), nil
		}
		return nil, ErrSheetNotConfigured
	}
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets client", "sheet", config.GoogleSheetName)
	return cli, nil
}
