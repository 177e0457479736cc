package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "https://queue.fal.run", cfg.Provider.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Provider.PollInterval)
	assert.Equal(t, "polling", cfg.Provider.Transport)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediaflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  api_key: yaml-key
  poll_interval: 500ms
  transport: realtime
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: redis:6379
log:
  level: debug
  format: console
`), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml-key", cfg.Provider.APIKey)
	assert.Equal(t, 500*time.Millisecond, cfg.Provider.PollInterval)
	assert.Equal(t, "realtime", cfg.Provider.Transport)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 文件未覆盖的字段保持默认值。
	assert.Equal(t, "https://queue.fal.run", cfg.Provider.BaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediaflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  api_key: yaml-key
`), 0o600))

	t.Setenv("MEDIAFLOW_PROVIDER_API_KEY", "env-key")
	t.Setenv("MEDIAFLOW_PROVIDER_POLL_INTERVAL", "250ms")
	t.Setenv("MEDIAFLOW_PROVIDER_SUBMIT_RATE", "2.5")
	t.Setenv("MEDIAFLOW_CACHE_BACKEND", "none")
	t.Setenv("MEDIAFLOW_LOG_OUTPUT_PATHS", "stdout, stderr")
	t.Setenv("MEDIAFLOW_METRICS_ENABLED", "false")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.Provider.PollInterval)
	assert.Equal(t, 2.5, cfg.Provider.SubmitRate)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, []string{"stdout", "stderr"}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/mediaflow.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "https://queue.fal.run", cfg.Provider.BaseURL)
}

func TestLoad_ValidatorRuns(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.APIKey = "key"
	require.NoError(t, cfg.Validate())

	t.Run("bad transport", func(t *testing.T) {
		c := *cfg
		c.Provider.Transport = "carrier-pigeon"
		assert.Error(t, c.Validate())
	})

	t.Run("bad cache backend", func(t *testing.T) {
		c := *cfg
		c.Cache.Backend = "memcached"
		assert.Error(t, c.Validate())
	})

	t.Run("redis backend requires addr", func(t *testing.T) {
		c := *cfg
		c.Cache.Backend = "redis"
		c.Cache.Redis.Addr = ""
		assert.Error(t, c.Validate())
	})
}

func TestProviderConfig_ClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.APIKey = "key"
	cfg.Provider.SubmitRate = 1.5

	cc := cfg.Provider.ClientConfig()
	assert.Equal(t, "key", cc.APIKey)
	assert.Equal(t, 1.5, cc.SubmitRate)
	assert.Equal(t, cfg.Provider.BaseURL, cc.BaseURL)

	sc := cfg.StorageClientConfig()
	assert.Equal(t, "key", sc.APIKey)
	assert.Equal(t, cfg.Storage.BaseURL, sc.BaseURL)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(DefaultLogConfig())
	require.NoError(t, err)
	logger.Info("config logger ok")

	_, err = NewLogger(LogConfig{Level: "shouting"})
	assert.Error(t, err)
}
