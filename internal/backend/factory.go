// Package backend assembles the persistence and mirror collaborators
// selected by configuration.
package backend

import (
	"context"
	"fmt"

	"spendwise/internal/amqp"
	"spendwise/internal/log"
	"spendwise/internal/sheets"
	gsheet "spendwise/internal/sheets/google"
	"spendwise/internal/sheets/memory"
	"spendwise/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var kv storage.KV
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		kv = repo
		f.logger.InfoContext(ctx, "Initialized SQLite backend",
			"db_path", config.SQLiteDBPath, "schema_version", repo.SchemaVersion())
	case MemoryBackend:
		kv = storage.NewMemory()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{KV: kv, Cleanup: kv.Close}

	// AMQP is optional: a broker outage must not keep the app from starting.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without mirror notifications",
				log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Notifier = client
			result.Cleanup = func() error {
				clientErr := client.Close()
				if err := kv.Close(); err != nil {
					return err
				}
				return clientErr
			}
		}
	}

	return result, nil
}

// CreateMirror returns the Google Sheets mirror, or an in-memory dry-run
// mirror when no spreadsheet is configured.
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.WarnContext(ctx, "GOOGLE_SPREADSHEET_ID not set, mirroring to memory only")
		return memory.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
		ExpensesSheet:   config.ExpensesSheet,
		CategoriesSheet: config.CategoriesSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "spreadsheet_id", config.GoogleSpreadsheetID)
	return client, nil
}
