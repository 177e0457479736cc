package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// 统一的队列错误码，用于对齐 HTTP 状态、可重试性与上层处理策略。
type ErrorCode string

const (
	ErrInvalidInput    ErrorCode = "MEDIA_INVALID_INPUT"    // 参数/输入校验失败
	ErrUnauthorized    ErrorCode = "MEDIA_UNAUTHORIZED"     // 未授权或密钥失效
	ErrForbidden       ErrorCode = "MEDIA_FORBIDDEN"        // 权限或内容策略拒绝
	ErrNotFound        ErrorCode = "MEDIA_NOT_FOUND"        // 未知端点或任务
	ErrRateLimited     ErrorCode = "MEDIA_RATE_LIMITED"     // 上游限流
	ErrQuotaExceeded   ErrorCode = "MEDIA_QUOTA_EXCEEDED"   // 额度用尽
	ErrJobFailed       ErrorCode = "MEDIA_JOB_FAILED"       // 远端任务执行失败
	ErrUpstreamTimeout ErrorCode = "MEDIA_UPSTREAM_TIMEOUT" // 上游超时
	ErrUpstreamError   ErrorCode = "MEDIA_UPSTREAM_ERROR"   // 上游 5xx/网络错误
	ErrStorage         ErrorCode = "MEDIA_STORAGE"          // 对象存储上传/下载失败
)

// Error is the typed error returned by the queue and storage clients.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status"`
	Retryable  bool      `json:"retryable"`
	Endpoint   string    `json:"endpoint,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// IsRetryable reports whether err is a provider error marked retryable.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable
}

// queueErrorResp 是队列的标准错误响应体；detail 可能是字符串或结构化数组。
type queueErrorResp struct {
	Detail json.RawMessage `json:"detail"`
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp queueErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && len(errResp.Detail) > 0 {
		var s string
		if json.Unmarshal(errResp.Detail, &s) == nil && s != "" {
			return s
		}
		return string(errResp.Detail)
	}
	return strings.TrimSpace(string(data))
}

// mapQueueError 将队列 HTTP 状态码映射为统一错误。
func mapQueueError(status int, msg, endpoint string) *Error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{Code: ErrUnauthorized, Message: msg, HTTPStatus: status, Endpoint: endpoint}
	case http.StatusForbidden:
		return &Error{Code: ErrForbidden, Message: msg, HTTPStatus: status, Endpoint: endpoint}
	case http.StatusNotFound:
		return &Error{Code: ErrNotFound, Message: msg, HTTPStatus: status, Endpoint: endpoint}
	case http.StatusTooManyRequests:
		return &Error{Code: ErrRateLimited, Message: msg, HTTPStatus: status, Retryable: true, Endpoint: endpoint}
	case http.StatusPaymentRequired:
		return &Error{Code: ErrQuotaExceeded, Message: msg, HTTPStatus: status, Endpoint: endpoint}
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return &Error{Code: ErrInvalidInput, Message: msg, HTTPStatus: status, Endpoint: endpoint}
	case http.StatusGatewayTimeout:
		return &Error{Code: ErrUpstreamTimeout, Message: msg, HTTPStatus: status, Retryable: true, Endpoint: endpoint}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return &Error{Code: ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: true, Endpoint: endpoint}
	default:
		return &Error{Code: ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: status >= 500, Endpoint: endpoint}
	}
}

func transportError(err error, endpoint string) *Error {
	return &Error{
		Code:       ErrUpstreamError,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Retryable:  true,
		Endpoint:   endpoint,
	}
}

func jobFailedError(msg, endpoint string, status int) *Error {
	return &Error{
		Code:       ErrJobFailed,
		Message:    fmt.Sprintf("job failed: %s", msg),
		HTTPStatus: status,
		Endpoint:   endpoint,
	}
}
