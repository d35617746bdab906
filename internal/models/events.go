package models

import "encoding/json"

// Realtime event names. Inbound events arrive from clients over the socket,
// outbound events are pushed by the gateway. Notifications are fire-and-forget:
// a missed event is corrected by the next REST fetch.
const (
	// client -> server
	EventMessageSeen      = "messageSeen"
	EventMessageDelivered = "messageDelivered"
	EventProfileUpdate    = "profileUpdate"

	// server -> client
	EventNewMessage     = "newMessage"
	EventMessageEdited  = "messageEdited"
	EventMessageDeleted = "messageDeleted"
	EventMessageStatus  = "messageStatus"
	EventProfileUpdated = "profileUpdated"
	EventOnlineUsers    = "onlineUsers"
)

// Envelope is the wire frame for every socket event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SeenEvent struct {
	MessageID string `json:"message_id" validate:"required"`
}

type DeliveredEvent struct {
	MessageID string `json:"message_id" validate:"required"`
}

type ProfileUpdateEvent struct {
	UserID     string `json:"user_id"`
	ProfilePic string `json:"profile_pic"`
}

type MessageStatusEvent struct {
	MessageID string        `json:"message_id"`
	Status    MessageStatus `json:"status"`
	UserID    string        `json:"user_id"`
}

type MessageEditedEvent struct {
	MessageID string `json:"message_id"`
	NewText   string `json:"new_text"`
	IsEdited  bool   `json:"is_edited"`
}

type MessageDeletedEvent struct {
	MessageID string      `json:"message_id"`
	DeleteFor DeleteScope `json:"delete_for"`
}

type OnlineUsersEvent struct {
	UserIDs []string `json:"user_ids"`
}
