package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meikuraledutech/chatflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHATFLOW_ENV", "CHATFLOW_ADDR", "CHATFLOW_STORE", "DATABASE_URL", "SQLITE_PATH",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CHATFLOW_LOCK_TTL", "CHATFLOW_METRICS",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "chatflow.yaml", `
env: production
addr: ":9000"
store: sqlite
sqlite_path: /tmp/flows.db
lock_ttl: 30s
`)
	t.Setenv("CHATFLOW_ADDR", ":9100")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CHATFLOW_METRICS", "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/flows.db", cfg.SQLitePath)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.Metrics)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		path string
	}{
		{name: "unknown store", env: map[string]string{"CHATFLOW_STORE": "mongo"}},
		{name: "postgres without url", env: map[string]string{"CHATFLOW_STORE": "postgres"}},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "one"}},
		{name: "bad ttl", env: map[string]string{"CHATFLOW_LOCK_TTL": "soon"}},
		{name: "negative ttl", env: map[string]string{"CHATFLOW_LOCK_TTL": "-1s"}},
		{name: "bad metrics flag", env: map[string]string{"CHATFLOW_METRICS": "maybe"}},
		{name: "json file", path: "config.json"},
		{name: "missing file", path: "missing.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := tt.path
			if path != "" {
				path = filepath.Join(t.TempDir(), path)
			}
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_PostgresWithURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATFLOW_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/chatflow")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/chatflow", cfg.DatabaseURL)
}
