package backend

import (
	"context"
	"fmt"

	"worklog/internal/amqp"
	"worklog/internal/log"
	"worklog/internal/store/jsonfile"
	"worklog/internal/store/memory"
	"worklog/internal/store/sheets"
	"worklog/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		return f.createJSONBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONBackend(config Config) (*BackendResult, error) {
	s, err := jsonfile.New(config.DataDirectory, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize json store: %w", err)
	}
	f.logger.Info("Initialized json backend", "data_directory", config.DataDirectory)
	return &BackendResult{Store: s}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var s *memory.Store
	if config.DataDirectory != "" {
		s = memory.NewFromFiles(config.DataDirectory)
	} else {
		s = memory.New(nil)
	}
	f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)
	return &BackendResult{Store: s}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	s, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: s, Cleanup: s.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	s, err := sheets.New(ctx, config.GoogleSpreadsheetID, sheets.Credentials{
		JSON: config.GoogleServiceAccountJSON,
		File: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &BackendResult{Store: s}, nil
}

// NewPublisher connects the change publisher. An empty url disables
// publishing and returns nil; a broker that cannot be reached is logged and
// also returns nil so the app keeps serving without notifications.
func NewPublisher(url, exchange, queue string, logger *log.Logger) *amqp.Client {
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default(log.ComponentAMQP)
	}
	client, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without notifications", log.FieldError, err.Error())
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", exchange, "queue", queue)
	return client
}
