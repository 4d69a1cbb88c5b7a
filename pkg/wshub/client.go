package wshub

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// client bridges one websocket connection to a topic subscription. The
// subscription feeds a channel sink; the write pump drains the sink, so a
// stalled connection drops frames in the sink instead of blocking the topic.
type client struct {
	id    uuid.UUID
	hub   *Hub
	conn  *websocket.Conn
	topic string
	sink  *streamkit.ChannelSink[[]byte]
	sub   *streamkit.Subscription[[]byte]

	// done is closed by the read pump when the connection dies. Cancelling
	// the subscription alone would not wake the write pump, because a
	// cancelled stream produces no terminal signal.
	done chan struct{}
}

func newClient(h *Hub, conn *websocket.Conn, topic string) *client {
	return &client{
		id:    uuid.New(),
		hub:   h,
		conn:  conn,
		topic: topic,
		sink:  streamkit.NewChannelSink[[]byte](h.cfg.SendBuffer),
		done:  make(chan struct{}),
	}
}

// writePump writes sink frames to the connection and keeps it alive with
// pings. It exits when the stream terminates or a write fails, closing the
// connection either way so the read pump unblocks.
func (c *client) writePump() {
	pingPeriod := c.hub.cfg.PongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sub.Cancel()
		_ = c.conn.Close()
		c.hub.clients.Add(-1)
		c.hub.wg.Done()

		c.hub.logger.Debug("client disconnected",
			logger.Component("wshub"),
			logger.Topic(c.topic),
			logger.ID("client_id", c.id),
			logger.Dropped(c.sink.Dropped()),
		)
	}()

	for {
		select {
		case frame, ok := <-c.sink.Out():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if !ok {
				// Stream terminated: tell the peer why before closing.
				code, reason := websocket.CloseNormalClosure, ""
				if err := c.sink.Err(); err != nil {
					code, reason = websocket.CloseInternalServerErr, err.Error()
				}
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump discards inbound frames while enforcing the pong deadline. A
// read error means the peer is gone; the subscription is cancelled so the
// topic stops delivering to this client.
func (c *client) readPump() {
	defer func() {
		c.sub.Cancel()
		_ = c.conn.Close()
		close(c.done)
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read failed",
					logger.Component("wshub"),
					logger.Topic(c.topic),
					logger.ID("client_id", c.id),
					logger.Error(err),
				)
			}
			return
		}
	}
}
