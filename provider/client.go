package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/mediaflow/internal/retry"
	"github.com/BaSui01/mediaflow/internal/tlsutil"
)

// Client 是推理队列客户端。
// 认证使用 Authorization: Key <token> 请求头；任务提交后通过队列返回的
// status/response/cancel URL 跟踪，与上游队列契约一致。
type Client struct {
	cfg     ClientConfig
	client  *http.Client
	limiter *rate.Limiter
	retryer *retry.Retryer
	logger  *zap.Logger
}

// NewClient 创建队列客户端，未设置的配置项回退为默认值。
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Transport == "" {
		cfg.Transport = def.Transport
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.SubmitRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SubmitRate), cfg.Burst)
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries
	policy.Classify = IsRetryable

	return &Client{
		cfg:     cfg,
		client:  tlsutil.SecureHTTPClient(cfg.Timeout),
		limiter: limiter,
		retryer: retry.New(policy, logger),
		logger:  logger.With(zap.String("component", "queue_client")),
	}
}

func (c *Client) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Submit 提交一个推理任务到队列端点，返回跟踪句柄。
// 可重试错误（限流、上游 5xx）按退避策略自动重试。
func (c *Client) Submit(ctx context.Context, endpoint string, payload any) (*JobHandle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("submit rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{
			Code:       ErrInvalidInput,
			Message:    fmt.Sprintf("marshal payload: %v", err),
			HTTPStatus: http.StatusBadRequest,
			Endpoint:   endpoint,
		}
	}

	submitURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.Trim(endpoint, "/")

	var handle JobHandle
	err = c.retryer.Do(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		c.buildHeaders(httpReq)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return transportError(err, endpoint)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return mapQueueError(resp.StatusCode, readErrMsg(resp.Body), endpoint)
		}

		handle = JobHandle{}
		if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
			return transportError(fmt.Errorf("decode submit response: %w", err), endpoint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	handle.Endpoint = endpoint
	c.fillHandleURLs(&handle, submitURL)

	c.logger.Debug("job submitted",
		zap.String("endpoint", endpoint),
		zap.String("request_id", handle.RequestID),
	)
	return &handle, nil
}

// fillHandleURLs 为省略跟踪 URL 的队列响应补全默认路径。
func (c *Client) fillHandleURLs(h *JobHandle, submitURL string) {
	base := fmt.Sprintf("%s/requests/%s", submitURL, h.RequestID)
	if h.StatusURL == "" {
		h.StatusURL = base + "/status"
	}
	if h.ResponseURL == "" {
		h.ResponseURL = base
	}
	if h.CancelURL == "" {
		h.CancelURL = base + "/cancel"
	}
}

// Status 轮询一次任务状态，请求附带日志。
func (c *Client) Status(ctx context.Context, h *JobHandle) (*QueueUpdate, error) {
	statusURL, err := withLogsParam(h.StatusURL)
	if err != nil {
		return nil, fmt.Errorf("status url: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.buildHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, transportError(err, h.Endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, mapQueueError(resp.StatusCode, readErrMsg(resp.Body), h.Endpoint)
	}

	var update QueueUpdate
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		return nil, transportError(fmt.Errorf("decode status: %w", err), h.Endpoint)
	}
	return &update, nil
}

// Subscribe 返回任务生命周期事件流。终态事件发出后通道关闭。
// 传输方式由配置决定：默认轮询，可选 WebSocket 实时流。
func (c *Client) Subscribe(ctx context.Context, h *JobHandle) (<-chan QueueUpdate, error) {
	switch c.cfg.Transport {
	case TransportRealtime:
		return c.subscribeRealtime(ctx, h)
	default:
		return c.subscribePolling(ctx, h), nil
	}
}

// maxConsecutivePollFailures 次连续失败后放弃订阅。
const maxConsecutivePollFailures = 3

func (c *Client) subscribePolling(ctx context.Context, h *JobHandle) <-chan QueueUpdate {
	ch := make(chan QueueUpdate, 8)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(c.cfg.PollInterval)
		defer ticker.Stop()

		failures := 0
		for {
			update, err := c.Status(ctx, h)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				c.logger.Warn("status poll failed",
					zap.String("request_id", h.RequestID),
					zap.Int("consecutive_failures", failures),
					zap.Error(err),
				)
				if !IsRetryable(err) || failures >= maxConsecutivePollFailures {
					ch <- QueueUpdate{Err: asProviderError(err, h.Endpoint)}
					return
				}
			} else {
				failures = 0
				select {
				case ch <- *update:
				case <-ctx.Done():
					return
				}
				if update.Phase.Terminal() {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return ch
}

// Result 获取终态任务的结果负载并解码到 out。
func (c *Client) Result(ctx context.Context, h *JobHandle, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, h.ResponseURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.buildHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return transportError(err, h.Endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrMsg(resp.Body)
		// 422 表示远端任务本身执行失败，而不是本次取结果的请求有问题。
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return jobFailedError(msg, h.Endpoint, resp.StatusCode)
		}
		return mapQueueError(resp.StatusCode, msg, h.Endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(fmt.Errorf("decode result: %w", err), h.Endpoint)
	}
	return nil
}

// Cancel 请求取消一个尚未终态的任务。
func (c *Client) Cancel(ctx context.Context, h *JobHandle) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, h.CancelURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.buildHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return transportError(err, h.Endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapQueueError(resp.StatusCode, readErrMsg(resp.Body), h.Endpoint)
	}
	return nil
}

func withLogsParam(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("logs", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func asProviderError(err error, endpoint string) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return transportError(err, endpoint)
}
