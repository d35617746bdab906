package gateway

import (
	"context"
	"encoding/json"

	"github.com/chatterbox-im/chatterbox/internal/models"
	"github.com/chatterbox-im/chatterbox/internal/usecase"
)

// RegisterHandlers binds the inbound event dispatch table to the lifecycle
// services. Invoked once at startup, after the hub and usecases exist.
func RegisterHandlers(
	hub *Hub,
	messages usecase.MessageUsecase,
	users usecase.UserUsecase,
) {
	hub.On(models.EventMessageSeen, func(ctx context.Context, sender *Client, data json.RawMessage) error {
		var ev models.SeenEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		return messages.MarkSeen(ctx, ev.MessageID, sender.UserID())
	})

	hub.On(models.EventMessageDelivered, func(ctx context.Context, sender *Client, data json.RawMessage) error {
		var ev models.DeliveredEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		return messages.MarkDelivered(ctx, ev.MessageID)
	})

	hub.On(models.EventProfileUpdate, func(ctx context.Context, sender *Client, data json.RawMessage) error {
		var ev models.ProfileUpdateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		// The sender's identity wins over whatever the payload claims.
		ev.UserID = sender.UserID()
		if err := users.UpdateProfilePic(ctx, ev.UserID, ev.ProfilePic); err != nil {
			return err
		}
		hub.ProfileUpdated(ev.UserID, ev)
		return nil
	})
}
