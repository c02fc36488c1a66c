package adapter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
api:
  page_size: 30
storage:
  backend: memory
logging:
  level: DEBUG
games:
  default_category: puzzle
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 30, cfg.API.PageSize)
		assert.Equal(t, StorageMemory, cfg.Storage.Backend)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "puzzle", cfg.Games.DefaultCategory)
		assert.Equal(t, "default", cfg.Storage.Profile)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  backend: memory\n")
		t.Setenv("REEL_API_PAGE_SIZE", "50")
		t.Setenv("REEL_STORAGE_BACKEND", "bolt")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.API.PageSize)
		assert.Equal(t, StorageBolt, cfg.Storage.Backend)
	})

	t.Run("redis requires a url", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  backend: redis\n")

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RedisURL")
	})

	t.Run("unknown backend is rejected", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  backend: sqlite\n")

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("page size bounds", func(t *testing.T) {
		path := writeConfig(t, "api:\n  page_size: 0\n")

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reel.log")

	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger, err = SetupLogger(&LoggingConfig{File: path, Level: "warn"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
