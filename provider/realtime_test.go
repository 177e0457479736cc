package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://queue.example/requests/1/status", "wss://queue.example/requests/1/status"},
		{"http://127.0.0.1:8080/status", "ws://127.0.0.1:8080/status"},
		{"wss://queue.example/status", "wss://queue.example/status"},
	}
	for _, tt := range tests {
		got, err := websocketURL(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestClient_SubscribeRealtime(t *testing.T) {
	updates := []QueueUpdate{
		{Phase: PhaseQueued, QueuePosition: 1},
		{Phase: PhaseInProgress, Logs: []LogEntry{{Message: "rendering frame 4"}}},
		{Phase: PhaseCompleted},
	}

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		for _, u := range updates {
			if err := wsjson.Write(r.Context(), conn, u); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		APIKey:    "secret",
		Transport: TransportRealtime,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := &JobHandle{
		RequestID: "req-1",
		Endpoint:  "fal-ai/test/model",
		StatusURL: srv.URL + "/requests/req-1/status",
	}

	ch, err := c.Subscribe(ctx, h)
	require.NoError(t, err)

	var phases []Phase
	for u := range ch {
		require.Nil(t, u.Err)
		phases = append(phases, u.Phase)
	}

	assert.Equal(t, []Phase{PhaseQueued, PhaseInProgress, PhaseCompleted}, phases)
	assert.Equal(t, "Key secret", gotAuth)
}
