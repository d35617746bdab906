package usecase

import (
	"context"

	"github.com/chatterbox-im/chatterbox/internal/models"
)

// Notifier is the gateway seen from the lifecycle services: fire-and-forget
// pushes to connected clients. Implementations never block and never fail the
// originating call.
type Notifier interface {
	NewMessage(receiverID string, msg *models.Message)
	MessageEdited(receiverID string, ev models.MessageEditedEvent)
	MessageDeleted(ev models.MessageDeletedEvent)
	MessageStatus(senderID string, ev models.MessageStatusEvent)
	ProfileUpdated(originID string, ev models.ProfileUpdateEvent)
}

type SendMessageParams struct {
	SenderID   string
	ReceiverID string
	Text       string
	Media      string // optional data URI
}

type MessageUsecase interface {
	Send(ctx context.Context, params SendMessageParams) (*models.Message, error)
	ListMessages(ctx context.Context, userID, peerID string) ([]*models.Message, error)
	MarkSeen(ctx context.Context, messageID, viewerID string) error
	MarkDelivered(ctx context.Context, messageID string) error
	Edit(ctx context.Context, messageID, editorID, newText string) (*models.Message, error)
	Delete(ctx context.Context, messageID, callerID string, scope models.DeleteScope) error
}

type UserUsecase interface {
	ListSidebarUsers(ctx context.Context, callerID string) ([]*models.SidebarEntry, error)
	UpdateProfilePic(ctx context.Context, userID, profilePic string) error
}

type AuthUsecase interface {
	ValidateToken(ctx context.Context, token string) (string, error)
	IssueToken(ctx context.Context, userID string) (string, error)
}
