package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"

	"github.com/chatterbox-im/chatterbox/internal/models"
	"github.com/chatterbox-im/chatterbox/pkg/util"
)

type apiError struct {
	Message string `json:"error"`
}

// Client talks to the chat backend: REST for the message lifecycle,
// websocket for realtime events. Events are folded into the Store.
type Client struct {
	host  string
	token string
	rest  *resty.Client
	store *Store

	// writeMu serializes socket writes: acks run on the read loop while
	// shell commands emit from their own goroutine, and the websocket
	// connection permits a single writer.
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func New(host, token, selfID string) *Client {
	rest := util.NewRestyClient().
		SetBaseURL(strings.TrimSuffix(host, "/")).
		SetAuthToken(token)
	return &Client{
		host:  host,
		token: token,
		rest:  rest,
		store: NewStore(selfID),
	}
}

func (c *Client) Store() *Store {
	return c.store
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	res, err := c.rest.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&apiError{}).
		Get(path)
	if err != nil {
		return err
	}
	return restError(res)
}

// Users fetches the sidebar contacts and seeds the store.
func (c *Client) Users(ctx context.Context) ([]models.SidebarEntry, error) {
	var entries []models.SidebarEntry
	if err := c.get(ctx, "/api/v1/messages/users", &entries); err != nil {
		return nil, err
	}
	c.store.SeedSidebar(entries)
	return entries, nil
}

// OpenConversation fetches the history with a peer and makes it the
// active chat.
func (c *Client) OpenConversation(ctx context.Context, peerID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.get(ctx, "/api/v1/messages/"+url.PathEscape(peerID), &msgs); err != nil {
		return nil, err
	}
	c.store.OpenConversation(peerID, msgs)
	return msgs, nil
}

// Send posts a message, media as a data URI, and folds the stored copy
// into the local caches.
func (c *Client) Send(ctx context.Context, peerID, text, mediaURI string) (*models.Message, error) {
	var msg models.Message
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text, "media": mediaURI}).
		SetResult(&msg).
		SetError(&apiError{}).
		Post("/api/v1/messages/send/" + url.PathEscape(peerID))
	if err != nil {
		return nil, err
	}
	if err := restError(res); err != nil {
		return nil, err
	}
	c.store.ApplyMessage(msg)
	return &msg, nil
}

// Edit rewrites a message's text. The server enforces the edit window.
func (c *Client) Edit(ctx context.Context, messageID, text string) (*models.Message, error) {
	var msg models.Message
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&msg).
		SetError(&apiError{}).
		Put("/api/v1/messages/" + url.PathEscape(messageID))
	if err != nil {
		return nil, err
	}
	if err := restError(res); err != nil {
		return nil, err
	}
	c.store.ApplyEdited(models.MessageEditedEvent{
		MessageID: messageID,
		NewText:   msg.Text,
		IsEdited:  msg.IsEdited,
	})
	return &msg, nil
}

// Delete removes a message for me or for everyone.
func (c *Client) Delete(ctx context.Context, messageID string, scope models.DeleteScope) error {
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"deleteFor": string(scope)}).
		SetError(&apiError{}).
		Delete("/api/v1/messages/" + url.PathEscape(messageID))
	if err != nil {
		return err
	}
	if err := restError(res); err != nil {
		return err
	}
	c.store.ApplyDeleted(models.MessageDeletedEvent{
		MessageID: messageID,
		DeleteFor: scope,
	})
	return nil
}

func restError(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	if apiErr, ok := res.Error().(*apiError); ok && apiErr.Message != "" {
		return fmt.Errorf("%s: %s", res.Status(), apiErr.Message)
	}
	return fmt.Errorf("%s", res.Status())
}

// Connect dials the realtime socket and pumps events into the store
// until the context ends or the connection drops. Incoming messages
// are acknowledged as delivered, and as seen when their conversation
// is open.
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := socketURL(c.host, c.token)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial socket: %w", err)
	}
	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read socket: %w", err)
		}
		c.handle(ctx, env)
	}
}

func (c *Client) handle(ctx context.Context, env models.Envelope) {
	switch env.Event {
	case models.EventNewMessage:
		var msg models.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			log.Warnw(ctx, "bad message payload", "error", err)
			return
		}
		c.store.ApplyMessage(msg)
		c.ack(ctx, &msg)
	case models.EventMessageStatus:
		var ev models.MessageStatusEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		c.store.ApplyStatus(ev)
	case models.EventMessageEdited:
		var ev models.MessageEditedEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		c.store.ApplyEdited(ev)
	case models.EventMessageDeleted:
		var ev models.MessageDeletedEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		c.store.ApplyDeleted(ev)
	case models.EventProfileUpdated:
		var ev models.ProfileUpdateEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		c.store.ApplyProfileUpdated(ev)
	case models.EventOnlineUsers:
		var ev models.OnlineUsersEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return
		}
		c.store.ApplyOnline(ev)
	default:
		log.Debugw(ctx, "unhandled event", "event", env.Event)
	}
}

// ack reports delivery, and seen when the sender's chat is open.
func (c *Client) ack(ctx context.Context, msg *models.Message) {
	id := msg.ID.Hex()
	if err := c.Emit(models.EventMessageDelivered, models.DeliveredEvent{MessageID: id}); err != nil {
		log.Warnw(ctx, "delivered ack failed", "error", err)
		return
	}
	if msg.SenderID == c.store.ActivePeer() {
		if err := c.Emit(models.EventMessageSeen, models.SeenEvent{MessageID: id}); err != nil {
			log.Warnw(ctx, "seen ack failed", "error", err)
		}
	}
}

// MarkSeen reports every unseen message of the active conversation.
func (c *Client) MarkSeen(ctx context.Context) {
	for _, msg := range c.store.Messages() {
		if msg.SenderID == c.store.SelfID() || msg.SeenBy(c.store.SelfID()) {
			continue
		}
		ev := models.SeenEvent{MessageID: msg.ID.Hex()}
		if err := c.Emit(models.EventMessageSeen, ev); err != nil {
			log.Warnw(ctx, "seen ack failed", "error", err)
			return
		}
	}
}

// UpdateProfilePic pushes a new picture over the socket; the server
// fans the change out to other users.
func (c *Client) UpdateProfilePic(profilePic string) error {
	return c.Emit(models.EventProfileUpdate, models.ProfileUpdateEvent{ProfilePic: profilePic})
}

// Emit writes one event frame to the socket.
func (c *Client) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("socket not connected")
	}
	return c.conn.WriteJSON(models.Envelope{Event: event, Data: raw})
}

func socketURL(host, token string) (string, error) {
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse host: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
