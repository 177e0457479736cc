package provider

import "time"

// Transport 选择 Subscribe 的状态事件传输方式。
type Transport string

const (
	// TransportPolling 以固定间隔轮询状态端点。
	TransportPolling Transport = "polling"
	// TransportRealtime 通过 WebSocket 订阅状态流。
	TransportRealtime Transport = "realtime"
)

// ClientConfig 配置队列客户端。
type ClientConfig struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	Transport    Transport     `json:"transport,omitempty" yaml:"transport,omitempty"`

	// SubmitRate 限制每秒提交数；0 表示不限流。Burst 默认为 1。
	SubmitRate float64 `json:"submit_rate,omitempty" yaml:"submit_rate,omitempty"`
	Burst      int     `json:"burst,omitempty" yaml:"burst,omitempty"`

	// MaxRetries 控制提交请求的重试次数。
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// DefaultClientConfig 返回默认队列客户端配置。
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:      "https://queue.fal.run",
		Timeout:      60 * time.Second,
		PollInterval: 2 * time.Second,
		Transport:    TransportPolling,
		Burst:        1,
		MaxRetries:   3,
	}
}

// StorageConfig 配置对象存储客户端。
type StorageConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultStorageConfig 返回默认对象存储配置。大文件传输使用较长超时。
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		BaseURL: "https://rest.fal.run",
		Timeout: 300 * time.Second,
	}
}
