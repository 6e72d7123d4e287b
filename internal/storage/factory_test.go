package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanagate/internal/models"
)

func TestFactory_SupportedProviders(t *testing.T) {
	factory := NewFactory()
	providers := factory.SupportedProviders()

	assert.Equal(t, []string{"memory", "sqlite", "postgres"}, providers)
}

func TestFactory_CreateMemory(t *testing.T) {
	factory := NewFactory()

	store, err := factory.Create(models.StorageConfig{Type: models.StorageTypeMemory})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &MemoryStore{}, store)
}

func TestFactory_CreateSQLite(t *testing.T) {
	factory := NewFactory()

	store, err := factory.Create(models.StorageConfig{
		Type:     models.StorageTypeSQLite,
		Database: models.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "events.db")},
	})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &SQLiteStore{}, store)
}

func TestFactory_CreateUnsupported(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(models.StorageConfig{Type: "redis"})
	assert.Error(t, err)
}
