package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfaceflow/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, config.BackendCSV, cfg.Ledger.Backend)
	assert.Equal(t, "data", cfg.Ledger.Dir)
	assert.Equal(t, "surfaceflow:ledger", cfg.Redis.Prefix)
	assert.Equal(t, 2, cfg.Automation.Workers)
	assert.Equal(t, 2*time.Second, cfg.Automation.StepInterval)
	assert.Equal(t, config.QueueMemory, cfg.Automation.Queue)
	assert.Zero(t, cfg.Fixtures.Seed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SURFACEFLOW_HTTP_ADDR", ":9999")
	t.Setenv("SURFACEFLOW_AUTOMATION_WORKERS", "0")
	t.Setenv("SURFACEFLOW_LEDGER_BACKEND", "redis")
	t.Setenv("SURFACEFLOW_REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, 0, cfg.Automation.Workers)
	assert.Equal(t, config.BackendRedis, cfg.Ledger.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surfaceflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":7000"
  rate_limit: 5
automation:
  step_interval: 500ms
fixtures:
  seed: 7
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 5.0, cfg.HTTP.RateLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Automation.StepInterval)
	assert.Equal(t, uint64(7), cfg.Fixtures.Seed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults", func(*config.Config) {}, true},
		{"postgres without dsn", func(c *config.Config) { c.Ledger.Backend = config.BackendPostgres }, false},
		{"postgres with dsn", func(c *config.Config) {
			c.Ledger.Backend = config.BackendPostgres
			c.Postgres.DSN = "postgres://localhost/sf"
		}, true},
		{"redis without addr", func(c *config.Config) { c.Ledger.Backend = config.BackendRedis }, false},
		{"unknown backend", func(c *config.Config) { c.Ledger.Backend = "sqlite" }, false},
		{"redis queue without addr", func(c *config.Config) { c.Automation.Queue = config.QueueRedis }, false},
		{"unknown queue", func(c *config.Config) { c.Automation.Queue = "kafka" }, false},
		{"negative workers", func(c *config.Config) { c.Automation.Workers = -1 }, false},
		{"zero interval", func(c *config.Config) { c.Automation.StepInterval = 0 }, false},
		{"zero interval, no workers", func(c *config.Config) {
			c.Automation.StepInterval = 0
			c.Automation.Workers = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
