package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"

	"github.com/chatterbox-im/chatterbox/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameBytes  = 64 << 10
	sendBufferSize = 256
)

// Client is one authenticated websocket connection.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub

	mu     sync.Mutex
	closed bool
}

func newClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		hub:    hub,
	}
}

func (c *Client) UserID() string {
	return c.userID
}

// Emit queues an event frame for delivery. Frames to a slow client are
// dropped rather than queued without bound; the client recovers state on its
// next REST fetch.
func (c *Client) Emit(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Errorw(context.Background(), "marshal socket event", "event", event, "error", err)
		return
	}
	frame, err := json.Marshal(models.Envelope{Event: event, Data: payload})
	if err != nil {
		log.Errorw(context.Background(), "marshal socket envelope", "event", event, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Warnw(context.Background(), "dropping socket event for slow client",
			"event", event, "user_id", c.userID)
	}
}

// closeSend marks the client gone and closes the send channel exactly once.
// Emit holds the same lock, so no frame can race the close.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.disconnect(ctx, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warnw(ctx, "malformed socket frame", "user_id", c.userID, "error", err)
			continue
		}
		c.hub.dispatch(ctx, c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
