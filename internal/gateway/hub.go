package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/chatterbox-im/chatterbox/internal/models"
	"github.com/chatterbox-im/chatterbox/internal/usecase"
)

// Ensure the hub can stand in as the lifecycle service's notifier.
var _ usecase.Notifier = (*Hub)(nil)

// EventHandler handles one inbound socket event kind. Errors are logged and
// swallowed: realtime notifications are best-effort and never fail a caller.
type EventHandler func(ctx context.Context, sender *Client, data json.RawMessage) error

// Hub owns the presence registry and every live connection, and routes
// inbound events through an explicit per-kind dispatch table so the fan-out
// rules stay in one auditable place.
type Hub struct {
	registry *Registry
	auth     usecase.AuthUsecase
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	handlers map[string]EventHandler
}

func NewHub(auth usecase.AuthUsecase) *Hub {
	return &Hub{
		registry: NewRegistry(),
		auth:     auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]EventHandler),
	}
}

// On registers the handler for one inbound event kind.
func (h *Hub) On(event string, handler EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = handler
}

// Registry exposes the presence registry for read-side consumers.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// HandleWS upgrades an authenticated request to a persistent connection and
// serves it until disconnect.
func (h *Hub) HandleWS(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.QueryParam("token")
	userID, err := h.auth.ValidateToken(ctx, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid handshake token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(userID, conn, h)
	if prev := h.registry.Register(userID, client); prev != nil {
		log.Infow(ctx, "evicting previous session", "user_id", userID)
		_ = prev.conn.Close()
	}
	log.Infow(ctx, "socket connected", "user_id", userID)
	h.broadcastOnline()

	go client.writePump()
	client.readPump(ctx)
	return nil
}

func (h *Hub) disconnect(ctx context.Context, c *Client) {
	h.registry.Unregister(c.userID, c)
	c.closeSend()
	log.Infow(ctx, "socket disconnected", "user_id", c.userID)
	h.broadcastOnline()
}

func (h *Hub) dispatch(ctx context.Context, sender *Client, env models.Envelope) {
	h.mu.RLock()
	handler, ok := h.handlers[env.Event]
	h.mu.RUnlock()
	if !ok {
		log.Warnw(ctx, "unknown socket event", "event", env.Event, "user_id", sender.userID)
		return
	}

	if err := handler(ctx, sender, env.Data); err != nil {
		log.Errorw(ctx, "socket event handler failed",
			"event", env.Event, "user_id", sender.userID, "error", err)
	}
}

// NewMessage pushes the full record to the receiver only; the sender's client
// updates itself from the synchronous REST response.
func (h *Hub) NewMessage(receiverID string, msg *models.Message) {
	h.emitTo(receiverID, models.EventNewMessage, msg)
}

// MessageEdited goes to the message's receiver only.
func (h *Hub) MessageEdited(receiverID string, ev models.MessageEditedEvent) {
	h.emitTo(receiverID, models.EventMessageEdited, ev)
}

// MessageDeleted is broadcast to every session so stale copies get purged.
func (h *Hub) MessageDeleted(ev models.MessageDeletedEvent) {
	h.registry.Each(func(_ string, c *Client) {
		c.Emit(models.EventMessageDeleted, ev)
	})
}

// MessageStatus delivers tick updates to the original sender only.
func (h *Hub) MessageStatus(senderID string, ev models.MessageStatusEvent) {
	h.emitTo(senderID, models.EventMessageStatus, ev)
}

// ProfileUpdated is broadcast to everyone except the originator, whose own
// session already holds the new picture.
func (h *Hub) ProfileUpdated(originID string, ev models.ProfileUpdateEvent) {
	h.registry.Each(func(userID string, c *Client) {
		if userID != originID {
			c.Emit(models.EventProfileUpdated, ev)
		}
	})
}

func (h *Hub) emitTo(userID, event string, data any) {
	if c, ok := h.registry.Lookup(userID); ok {
		c.Emit(event, data)
	}
}

func (h *Hub) broadcastOnline() {
	ev := models.OnlineUsersEvent{UserIDs: h.registry.Online()}
	h.registry.Each(func(_ string, c *Client) {
		c.Emit(models.EventOnlineUsers, ev)
	})
}
