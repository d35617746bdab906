package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a denormalized view of an identity owned by the auth service.
// Only the display fields live here; credentials never do.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email" validate:"required,email"`
	ProfilePic string             `bson:"profile_pic" json:"profile_pic"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// SidebarEntry is a contact plus the preview of the conversation with them.
type SidebarEntry struct {
	User        User     `json:"user"`
	LastMessage *Message `json:"last_message,omitempty"`
	Unread      int64    `json:"unread"`
}
