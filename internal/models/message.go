package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chatterbox-im/chatterbox/pkg/util"
)

// Message delivery progresses sent -> delivered -> seen and never moves back.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusSeen      MessageStatus = "seen"
)

var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusSeen:      2,
}

// After reports whether s is a strictly later delivery state than other.
func (s MessageStatus) After(other MessageStatus) bool {
	return statusRank[s] > statusRank[other]
}

type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    string             `bson:"sender_id" json:"sender_id" validate:"required"`
	ReceiverID  string             `bson:"receiver_id" json:"receiver_id" validate:"required"`
	Text        string             `bson:"text" json:"text"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	VideoURL    string             `bson:"video_url,omitempty" json:"video_url,omitempty"`
	DocumentURL string             `bson:"document_url,omitempty" json:"document_url,omitempty"`
	Status      MessageStatus      `bson:"status" json:"status"`
	Seen        []string           `bson:"seen" json:"seen"`
	DeletedFor  []string           `bson:"deleted_for" json:"deleted_for"`
	EditHistory []EditRecord       `bson:"edit_history" json:"edit_history"`
	IsEdited    bool               `bson:"is_edited" json:"is_edited"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// EditRecord keeps the text a message had before one edit.
type EditRecord struct {
	Text     string    `bson:"text" json:"text"`
	EditedAt time.Time `bson:"edited_at" json:"edited_at"`
}

// EditWindow is how long after creation the sender may still edit a message.
const EditWindow = 10 * time.Minute

// Editable reports whether the message can still be edited at now.
func (m *Message) Editable(now time.Time) bool {
	return now.Sub(m.CreatedAt) <= EditWindow
}

// MediaURL returns whichever media reference the message carries, if any.
func (m *Message) MediaURL() string {
	switch {
	case m.ImageURL != "":
		return m.ImageURL
	case m.VideoURL != "":
		return m.VideoURL
	default:
		return m.DocumentURL
	}
}

// HiddenFor reports whether userID soft-deleted this message.
func (m *Message) HiddenFor(userID string) bool {
	return util.SliceIncludes(m.DeletedFor, userID)
}

// SeenBy reports whether userID already viewed this message.
func (m *Message) SeenBy(userID string) bool {
	return util.SliceIncludes(m.Seen, userID)
}

type DeleteScope string

const (
	DeleteForMe       DeleteScope = "me"
	DeleteForEveryone DeleteScope = "everyone"
)

func (s DeleteScope) Valid() bool {
	return s == DeleteForMe || s == DeleteForEveryone
}
