package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/internal/retry"
)

// fakeQueue simulates the provider's queue endpoints for one request id.
type fakeQueue struct {
	mu          sync.Mutex
	statusSeq   []QueueUpdate
	statusCalls int
	statusCode  int // non-zero forces this HTTP status on /status
	submitCode  int // non-zero forces this HTTP status on submit
	result      any
	cancelled   bool

	lastAuth     string
	lastLogsFlag string
}

func (q *fakeQueue) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /fal-ai/test/model", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		q.lastAuth = r.Header.Get("Authorization")
		code := q.submitCode
		q.submitCode = 0 // only fail the first submit
		q.mu.Unlock()

		if code != 0 {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"detail":"submit rejected"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"request_id": "req-1"})
	})

	mux.HandleFunc("GET /fal-ai/test/model/requests/req-1/status", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.lastLogsFlag = r.URL.Query().Get("logs")

		if q.statusCode != 0 {
			w.WriteHeader(q.statusCode)
			_, _ = w.Write([]byte(`{"detail":"status unavailable"}`))
			return
		}

		idx := q.statusCalls
		if idx >= len(q.statusSeq) {
			idx = len(q.statusSeq) - 1
		}
		q.statusCalls++
		_ = json.NewEncoder(w).Encode(q.statusSeq[idx])
	})

	mux.HandleFunc("GET /fal-ai/test/model/requests/req-1", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.result == nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"inference crashed"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(q.result)
	})

	mux.HandleFunc("PUT /fal-ai/test/model/requests/req-1/cancel", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		q.cancelled = true
		q.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(ClientConfig{
		APIKey:       "secret",
		BaseURL:      baseURL,
		PollInterval: 10 * time.Millisecond,
		Timeout:      5 * time.Second,
	}, zap.NewNop())
	// Fast retries so failure paths don't slow the suite down.
	c.retryer = retry.New(&retry.Policy{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		Classify:     IsRetryable,
	}, zap.NewNop())
	return c
}

func TestClient_Submit(t *testing.T) {
	q := &fakeQueue{}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	h, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{"prompt": "a cat"})
	require.NoError(t, err)

	assert.Equal(t, "req-1", h.RequestID)
	assert.Equal(t, "fal-ai/test/model", h.Endpoint)
	assert.Equal(t, srv.URL+"/fal-ai/test/model/requests/req-1/status", h.StatusURL)
	assert.Equal(t, srv.URL+"/fal-ai/test/model/requests/req-1", h.ResponseURL)
	assert.Equal(t, srv.URL+"/fal-ai/test/model/requests/req-1/cancel", h.CancelURL)
	assert.Equal(t, "Key secret", q.lastAuth)
}

func TestClient_SubmitMapsErrors(t *testing.T) {
	q := &fakeQueue{submitCode: http.StatusUnauthorized}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	_, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{})
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrUnauthorized, pe.Code)
	assert.Equal(t, "submit rejected", pe.Message)
}

func TestClient_SubmitRetriesRetryable(t *testing.T) {
	q := &fakeQueue{submitCode: http.StatusServiceUnavailable}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	h, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{})
	require.NoError(t, err, "503 is retryable and the second attempt succeeds")
	assert.Equal(t, "req-1", h.RequestID)
}

func TestClient_Status(t *testing.T) {
	q := &fakeQueue{statusSeq: []QueueUpdate{
		{Phase: PhaseInProgress, Logs: []LogEntry{{Message: "step 3/20"}}},
	}}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	h, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{})
	require.NoError(t, err)

	u, err := c.Status(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, u.Phase)
	assert.Equal(t, []string{"step 3/20"}, u.LogLines())
	assert.Equal(t, "1", q.lastLogsFlag, "status polls must request logs")
}

func TestClient_SubscribeLifecycle(t *testing.T) {
	q := &fakeQueue{statusSeq: []QueueUpdate{
		{Phase: PhaseQueued, QueuePosition: 2},
		{Phase: PhaseQueued, QueuePosition: 0},
		{Phase: PhaseInProgress, Logs: []LogEntry{{Message: "denoising 5/20"}}},
		{Phase: PhaseCompleted},
	}}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := c.Submit(ctx, "fal-ai/test/model", map[string]any{})
	require.NoError(t, err)

	ch, err := c.Subscribe(ctx, h)
	require.NoError(t, err)

	var phases []Phase
	for u := range ch {
		require.Nil(t, u.Err)
		phases = append(phases, u.Phase)
	}

	require.NotEmpty(t, phases)
	assert.Equal(t, PhaseCompleted, phases[len(phases)-1])
	assert.Contains(t, phases, PhaseQueued)
	assert.Contains(t, phases, PhaseInProgress)
}

func TestClient_SubscribeSurfacesPersistentFailure(t *testing.T) {
	q := &fakeQueue{statusCode: http.StatusInternalServerError}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := c.Submit(ctx, "fal-ai/test/model", map[string]any{})
	require.NoError(t, err)

	ch, err := c.Subscribe(ctx, h)
	require.NoError(t, err)

	var last QueueUpdate
	for u := range ch {
		last = u
	}
	require.NotNil(t, last.Err)
	assert.Equal(t, ErrUpstreamError, last.Err.Code)
}

func TestClient_Result(t *testing.T) {
	q := &fakeQueue{result: map[string]any{
		"images": []map[string]any{{"url": "https://cdn.example/cat.png"}},
	}}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	h, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{})
	require.NoError(t, err)

	var out struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	require.NoError(t, c.Result(context.Background(), h, &out))
	require.Len(t, out.Images, 1)
	assert.Equal(t, "https://cdn.example/cat.png", out.Images[0].URL)
}

func TestClient_ResultJobFailed(t *testing.T) {
	q := &fakeQueue{} // nil result → 422 with failure detail
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	h, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{})
	require.NoError(t, err)

	var out map[string]any
	err = c.Result(context.Background(), h, &out)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrJobFailed, pe.Code)
	assert.Contains(t, pe.Message, "inference crashed")
}

func TestClient_Cancel(t *testing.T) {
	q := &fakeQueue{}
	srv := q.server(t)
	c := newTestClient(t, srv.URL)

	h, err := c.Submit(context.Background(), "fal-ai/test/model", map[string]any{})
	require.NoError(t, err)

	require.NoError(t, c.Cancel(context.Background(), h))
	assert.True(t, q.cancelled)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)
	assert.Equal(t, "https://queue.fal.run", c.cfg.BaseURL)
	assert.Equal(t, TransportPolling, c.cfg.Transport)
	assert.Positive(t, c.cfg.PollInterval)
	assert.Positive(t, c.cfg.Timeout)
}
