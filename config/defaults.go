// =============================================================================
// 📦 mediaflow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/mediaflow/provider"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Provider: DefaultProviderConfig(),
		Storage:  DefaultStorageConfig(),
		Cache:    DefaultCacheConfig(),
		Log:      DefaultLogConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// DefaultProviderConfig 返回默认推理队列配置
func DefaultProviderConfig() ProviderConfig {
	def := provider.DefaultClientConfig()
	return ProviderConfig{
		APIKey:       "",
		BaseURL:      def.BaseURL,
		Timeout:      def.Timeout,
		PollInterval: def.PollInterval,
		Transport:    string(def.Transport),
		SubmitRate:   0,
		Burst:        def.Burst,
		MaxRetries:   def.MaxRetries,
	}
}

// DefaultStorageConfig 返回默认对象存储配置
func DefaultStorageConfig() StorageConfig {
	def := provider.DefaultStorageConfig()
	return StorageConfig{
		BaseURL: def.BaseURL,
		Timeout: def.Timeout,
	}
}

// DefaultCacheConfig 返回默认上传缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Backend: "memory",
		TTL:     24 * time.Hour,
		Redis:   DefaultRedisConfig(),
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "mediaflow",
	}
}
