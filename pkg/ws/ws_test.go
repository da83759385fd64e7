package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/aabhushan/pkg/metrics"
	"github.com/shashiranjanraj/aabhushan/pkg/middleware"
	"github.com/shashiranjanraj/aabhushan/pkg/reqid"
	"github.com/shashiranjanraj/aabhushan/pkg/router"
	"github.com/shashiranjanraj/aabhushan/pkg/ws"
)

// newFeedServer serves /ws/products behind the same middleware stack the
// application installs globally, so the upgrade path is tested through the
// wrapped response writers and not against a bare handler.
func newFeedServer(t *testing.T) (*httptest.Server, *ws.Hub) {
	t.Helper()

	hub := ws.NewHub()
	go hub.Run()

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Get("/ws/products", "ws.products", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, hub)
	})

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/products"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err, "handshake must succeed through the middleware stack")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestUpgradeThroughMiddlewareStack(t *testing.T) {
	srv, _ := newFeedServer(t)

	conn := dialFeed(t, srv)
	assert.NotNil(t, conn)
}

func TestBroadcastReachesEverySubscriber(t *testing.T) {
	srv, hub := newFeedServer(t)

	first := dialFeed(t, srv)
	second := dialFeed(t, srv)

	// Registration runs through the hub loop after the handshake returns.
	time.Sleep(100 * time.Millisecond)

	hub.BroadcastJSON(map[string]any{
		"event": "product.created",
		"data":  map[string]any{"_id": 1, "name": "Gold Ring"},
	})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &frame))
		assert.Equal(t, "product.created", frame.Event)
		assert.Contains(t, string(frame.Data), "Gold Ring")
	}
}

func TestBroadcastWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	for i := 0; i < 10; i++ {
		hub.Broadcast([]byte(`{"event":"product.deleted"}`))
	}
}
