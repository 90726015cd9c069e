package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 5, cfg.Pagination.PageSize)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.RateLimit.Enabled())
}

func TestLoadYAMLThenEnvironment(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "petclinic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  shutdown_timeout: 3s
database:
  driver: SQLite
  dsn: file:petclinic.db
pagination:
  page_size: 10
`), 0o644))

	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:petclinic.db", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Pagination.PageSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PAGE_SIZE=7\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("PAGE_SIZE") })

	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pagination.PageSize)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"dsn", func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.DSN = "" }},
		{"page size", func(c *Config) { c.Pagination.PageSize = 0 }},
		{"burst", func(c *Config) { c.RateLimit.RequestsPerSecond = 5; c.RateLimit.Burst = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
