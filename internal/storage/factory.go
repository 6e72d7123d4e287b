package storage

import (
	"fmt"

	"lanagate/internal/models"
)

// Factory provides a centralized way to create event store instances based on
// configuration. This allows for easy extensibility and provider swapping
// without code changes.
type Factory struct{}

// NewFactory creates a new storage factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates an event store based on the provided configuration.
// Supported providers:
//   - memory: In-memory event log (for testing/development)
//   - sqlite: SQLite database storage (single node)
//   - postgres: PostgreSQL database storage (production, shared across instances)
func (f *Factory) Create(config models.StorageConfig) (EventStore, error) {
	storageConfig := Config{
		Type:             config.Type,
		ConnectionString: config.Database.DSN,
		MaxOpenConns:     config.Database.MaxOpenConns,
		Options:          config.Options,
	}

	switch config.Type {
	case models.StorageTypeMemory:
		return NewMemoryStore(storageConfig)
	case models.StorageTypeSQLite:
		return NewSQLiteStore(storageConfig)
	case models.StorageTypePostgres:
		return NewPostgresStore(storageConfig)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// SupportedProviders returns a list of all supported storage provider types.
func (f *Factory) SupportedProviders() []string {
	return []string{models.StorageTypeMemory, models.StorageTypeSQLite, models.StorageTypePostgres}
}
