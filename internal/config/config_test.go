package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: prod
http_server:
  address: "localhost:9090"
  read_timeout: 3s
storage:
  driver: sqlite
  path: storage/books.db
  unique_ids: true
rate_limit:
  rps: 2
  burst: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "localhost:9090", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "storage/books.db", cfg.Storage.Path)
	assert.True(t, cfg.Storage.UniqueIDs)
	assert.Equal(t, 3*time.Second, cfg.Storage.QueryTimeout)
	assert.Equal(t, 2.0, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
http_server:
  address: ":8082"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Storage.UniqueIDs)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HTTP_SERVER_ADDR", ":7000")
	path := writeConfig(t, `
http_server:
  address: ":8082"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing address", body: "env: dev\n"},
		{name: "unknown driver", body: "http_server:\n  address: \":1\"\nstorage:\n  driver: redis\n"},
		{name: "sqlite without path", body: "http_server:\n  address: \":1\"\nstorage:\n  driver: sqlite\n"},
		{name: "postgres without dsn", body: "http_server:\n  address: \":1\"\nstorage:\n  driver: postgres\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestShippedLocalConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "local.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "localhost:8082", cfg.Addr)
}
