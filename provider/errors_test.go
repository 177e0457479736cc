package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapQueueError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  ErrorCode
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, false},
		{"forbidden", http.StatusForbidden, ErrForbidden, false},
		{"not found", http.StatusNotFound, ErrNotFound, false},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited, true},
		{"quota", http.StatusPaymentRequired, ErrQuotaExceeded, false},
		{"validation", http.StatusUnprocessableEntity, ErrInvalidInput, false},
		{"bad request", http.StatusBadRequest, ErrInvalidInput, false},
		{"gateway timeout", http.StatusGatewayTimeout, ErrUpstreamTimeout, true},
		{"bad gateway", http.StatusBadGateway, ErrUpstreamError, true},
		{"unavailable", http.StatusServiceUnavailable, ErrUpstreamError, true},
		{"internal", http.StatusInternalServerError, ErrUpstreamError, true},
		{"teapot", http.StatusTeapot, ErrUpstreamError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mapQueueError(tt.status, "boom", "fal-ai/test")
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.status, e.HTTPStatus)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, "fal-ai/test", e.Endpoint)
			assert.Equal(t, "boom", e.Error())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&Error{Retryable: true}))
	assert.False(t, IsRetryable(&Error{Retryable: false}))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))

	// Wrapped provider errors still classify.
	wrapped := fmt.Errorf("submit: %w", &Error{Retryable: true})
	assert.True(t, IsRetryable(wrapped))
}

func TestReadErrMsg(t *testing.T) {
	t.Run("string detail", func(t *testing.T) {
		msg := readErrMsg(strings.NewReader(`{"detail":"invalid prompt"}`))
		assert.Equal(t, "invalid prompt", msg)
	})

	t.Run("structured detail", func(t *testing.T) {
		msg := readErrMsg(strings.NewReader(`{"detail":[{"loc":["body","prompt"],"msg":"field required"}]}`))
		assert.Contains(t, msg, "field required")
	})

	t.Run("non-json body", func(t *testing.T) {
		msg := readErrMsg(strings.NewReader("upstream exploded\n"))
		assert.Equal(t, "upstream exploded", msg)
	})
}
