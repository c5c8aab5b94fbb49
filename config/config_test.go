package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, "marketplace", cfg.Metrics.Namespace)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := []byte("server:\n  port: 9000\noutbox:\n  poll_interval: 500ms\njwt:\n  issuer: from-file\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), yml, 0o600))

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, "from-file", cfg.JWT.Issuer)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", cfg.Database.URL)
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestRedisConfig_ToBrokerConfig(t *testing.T) {
	c := RedisConfig{URL: "redis://r:6379/1", PoolSize: 4, MaxRetries: 2}
	b := c.ToBrokerConfig()
	assert.Equal(t, "redis://r:6379/1", b.URL)
	assert.Equal(t, 4, b.PoolSize)
	assert.Equal(t, 2, b.MaxRetries)
}
