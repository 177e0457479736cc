package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/internal/tlsutil"
)

// subscribeRealtime 通过 WebSocket 订阅状态流：队列在状态 URL 上提供
// ws 升级，推送与轮询相同结构的 QueueUpdate，终态后服务端关闭连接。
func (c *Client) subscribeRealtime(ctx context.Context, h *JobHandle) (<-chan QueueUpdate, error) {
	wsURL, err := websocketURL(h.StatusURL)
	if err != nil {
		return nil, transportError(err, h.Endpoint)
	}

	header := http.Header{}
	header.Set("Authorization", "Key "+c.cfg.APIKey)

	// 握手客户端不能带整体超时，连接要跟随任务存活。
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: header,
		HTTPClient: &http.Client{Transport: tlsutil.SecureTransport()},
	})
	if err != nil {
		return nil, transportError(err, h.Endpoint)
	}
	// 日志行可能较大。
	conn.SetReadLimit(1 << 20)

	ch := make(chan QueueUpdate, 8)
	go func() {
		defer close(ch)
		defer conn.Close(websocket.StatusNormalClosure, "")

		for {
			var update QueueUpdate
			if err := wsjson.Read(ctx, conn, &update); err != nil {
				if ctx.Err() != nil {
					return
				}
				// 终态事件之后服务端正常关闭，不算错误。
				if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
					return
				}
				c.logger.Warn("realtime stream broken",
					zap.String("request_id", h.RequestID),
					zap.Error(err),
				)
				ch <- QueueUpdate{Err: transportError(err, h.Endpoint)}
				return
			}

			select {
			case ch <- update:
			case <-ctx.Done():
				return
			}
			if update.Phase.Terminal() {
				return
			}
		}
	}()

	return ch, nil
}

// websocketURL 将 http(s) 状态 URL 转换为 ws(s)。
func websocketURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	switch {
	case u.Scheme == "https":
		u.Scheme = "wss"
	case u.Scheme == "http":
		u.Scheme = "ws"
	case strings.HasPrefix(u.Scheme, "ws"):
		// already a websocket URL
	}
	return u.String(), nil
}
