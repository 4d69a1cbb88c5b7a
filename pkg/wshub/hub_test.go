package wshub_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamkit/pkg/wshub"
)

func newHubServer(t *testing.T, cfg wshub.Config, opts ...wshub.Option) (*wshub.Hub, *httptest.Server) {
	t.Helper()
	hub := wshub.New(cfg, opts...)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?topic=" + topic
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func readClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	return closeErr
}

func waitForClients(t *testing.T, hub *wshub.Hub, n int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Stats().Clients == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHub_Publish(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty topic", func(t *testing.T) {
		t.Parallel()

		hub := wshub.New(wshub.Config{})
		assert.ErrorIs(t, hub.Publish("", []byte("x")), wshub.ErrEmptyTopic)
	})

	t.Run("delivers live frames to connected clients", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		conn := dial(t, srv, "orders")
		waitForClients(t, hub, 1)

		require.NoError(t, hub.Publish("orders", []byte("frame-1")))
		assert.Equal(t, "frame-1", string(readFrame(t, conn)))
	})

	t.Run("fans one frame out to every client", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		a := dial(t, srv, "orders")
		b := dial(t, srv, "orders")
		waitForClients(t, hub, 2)

		require.NoError(t, hub.Publish("orders", []byte("broadcast")))
		assert.Equal(t, "broadcast", string(readFrame(t, a)))
		assert.Equal(t, "broadcast", string(readFrame(t, b)))
	})

	t.Run("topics are isolated", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		orders := dial(t, srv, "orders")
		alerts := dial(t, srv, "alerts")
		waitForClients(t, hub, 2)

		require.NoError(t, hub.Publish("orders", []byte("order-frame")))
		require.NoError(t, hub.Publish("alerts", []byte("alert-frame")))

		assert.Equal(t, "order-frame", string(readFrame(t, orders)))
		assert.Equal(t, "alert-frame", string(readFrame(t, alerts)))
	})
}

func TestHub_Replay(t *testing.T) {
	t.Parallel()

	t.Run("new connections receive recent frames first", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{ReplayDepth: 8})
		require.NoError(t, hub.Publish("orders", []byte("old-1")))
		require.NoError(t, hub.Publish("orders", []byte("old-2")))

		conn := dial(t, srv, "orders")
		assert.Equal(t, "old-1", string(readFrame(t, conn)))
		assert.Equal(t, "old-2", string(readFrame(t, conn)))

		waitForClients(t, hub, 1)
		require.NoError(t, hub.Publish("orders", []byte("live")))
		assert.Equal(t, "live", string(readFrame(t, conn)))
	})

	t.Run("replay keeps only the configured depth", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{ReplayDepth: 2})
		for _, frame := range []string{"1", "2", "3", "4"} {
			require.NoError(t, hub.Publish("orders", []byte(frame)))
		}

		conn := dial(t, srv, "orders")
		assert.Equal(t, "3", string(readFrame(t, conn)))
		assert.Equal(t, "4", string(readFrame(t, conn)))
	})
}

func TestHub_TopicLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("close topic sends a normal close frame", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		conn := dial(t, srv, "orders")
		waitForClients(t, hub, 1)

		require.NoError(t, hub.CloseTopic("orders"))

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
		assert.Equal(t, 0, hub.Stats().Topics)
	})

	t.Run("fail topic carries the cause to clients", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		conn := dial(t, srv, "orders")
		waitForClients(t, hub, 1)

		require.NoError(t, hub.FailTopic("orders", errors.New("upstream gone")))

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
		assert.Equal(t, "upstream gone", closeErr.Text)
	})

	t.Run("closing an unknown topic fails", func(t *testing.T) {
		t.Parallel()

		hub := wshub.New(wshub.Config{})
		assert.ErrorIs(t, hub.CloseTopic("ghost"), wshub.ErrTopicNotFound)
		assert.ErrorIs(t, hub.FailTopic("ghost", errors.New("x")), wshub.ErrTopicNotFound)
	})

	t.Run("closed topic name can be reused", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		require.NoError(t, hub.Publish("orders", []byte("gen-1")))
		require.NoError(t, hub.CloseTopic("orders"))

		require.NoError(t, hub.Publish("orders", []byte("gen-2")))
		conn := dial(t, srv, "orders")

		// Only the new generation's frames replay.
		assert.Equal(t, "gen-2", string(readFrame(t, conn)))
	})
}

func TestHub_ServeHTTP(t *testing.T) {
	t.Parallel()

	t.Run("requires a topic parameter", func(t *testing.T) {
		t.Parallel()

		_, srv := newHubServer(t, wshub.Config{})
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("tracks connected clients in stats", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		conn := dial(t, srv, "orders")
		waitForClients(t, hub, 1)
		assert.Equal(t, 1, hub.Stats().Topics)

		_ = conn.Close()
		waitForClients(t, hub, 0)
	})
}

func TestHub_Shutdown(t *testing.T) {
	t.Parallel()

	t.Run("closes clients and rejects further use", func(t *testing.T) {
		t.Parallel()

		hub, srv := newHubServer(t, wshub.Config{})
		conn := dial(t, srv, "orders")
		waitForClients(t, hub, 1)
		require.NoError(t, hub.Healthcheck(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, hub.Shutdown(ctx))

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)

		assert.ErrorIs(t, hub.Publish("orders", []byte("x")), wshub.ErrHubClosed)
		assert.ErrorIs(t, hub.Healthcheck(context.Background()), wshub.ErrHubClosed)
		assert.ErrorIs(t, hub.Healthcheck(context.Background()), wshub.ErrHealthcheckFailed)

		resp, err := http.Get(srv.URL + "?topic=orders")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("shutdown is idempotent", func(t *testing.T) {
		t.Parallel()

		hub := wshub.New(wshub.Config{})
		require.NoError(t, hub.Shutdown(context.Background()))
		require.NoError(t, hub.Shutdown(context.Background()))
	})
}
