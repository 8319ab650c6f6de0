package backend

import (
	"context"
	"fmt"

	"savings/internal/ledger/memory"
	applog "savings/internal/log"
	"savings/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	logger := f.logger.WithComponent(applog.ComponentStorage)
	repo, err := storage.NewSQLiteRepository(config.SQLiteDSN)
	if err != nil {
		logger.ErrorContext(ctx, "SQLite repository unavailable",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	logger.InfoContext(ctx, "Initialized SQLite backend", "dsn", config.SQLiteDSN)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend")
	return &BackendResult{Backend: memory.New()}, nil
}
