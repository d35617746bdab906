package usecase

import (
	"context"
	"strings"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/chatterbox-im/chatterbox/internal/models"
	"github.com/chatterbox-im/chatterbox/internal/repo/media"
	"github.com/chatterbox-im/chatterbox/internal/repo/mongodb"
)

type messageUsecase struct {
	messageRepo mongodb.MessageRepository
	mediaStore  media.Store
	notifier    Notifier
}

func NewMessageUsecase(
	messageRepo mongodb.MessageRepository,
	mediaStore media.Store,
	notifier Notifier,
) MessageUsecase {
	return &messageUsecase{
		messageRepo: messageRepo,
		mediaStore:  mediaStore,
		notifier:    notifier,
	}
}

func (uc *messageUsecase) Send(ctx context.Context, params SendMessageParams) (*models.Message, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" && params.Media == "" {
		return nil, models.Validationf("message must contain text or media")
	}

	message := &models.Message{
		SenderID:    params.SenderID,
		ReceiverID:  params.ReceiverID,
		Text:        text,
		Status:      models.StatusSent,
		Seen:        []string{},
		DeletedFor:  []string{},
		EditHistory: []models.EditRecord{},
	}

	if params.Media != "" {
		payload, err := models.ParseMediaDataURI(params.Media)
		if err != nil {
			return nil, err
		}

		// An upload failure aborts the send; no partial record is created.
		mediaURL, err := uc.mediaStore.Upload(ctx, payload)
		if err != nil {
			return nil, err
		}

		switch payload.Kind {
		case models.MediaImage:
			message.ImageURL = mediaURL
		case models.MediaVideo:
			message.VideoURL = mediaURL
		default:
			message.DocumentURL = mediaURL
		}
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	uc.notifier.NewMessage(params.ReceiverID, message)
	return message, nil
}

func (uc *messageUsecase) ListMessages(ctx context.Context, userID, peerID string) ([]*models.Message, error) {
	return uc.messageRepo.GetConversation(ctx, userID, peerID)
}

// MarkSeen is idempotent: a viewer already in the seen set leaves the record
// untouched and triggers no notification.
func (uc *messageUsecase) MarkSeen(ctx context.Context, messageID, viewerID string) error {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SeenBy(viewerID) {
		return nil
	}

	if _, err := uc.messageRepo.AddSeen(ctx, messageID, viewerID); err != nil {
		return err
	}

	uc.notifier.MessageStatus(message.SenderID, models.MessageStatusEvent{
		MessageID: messageID,
		Status:    models.StatusSeen,
		UserID:    viewerID,
	})
	return nil
}

func (uc *messageUsecase) MarkDelivered(ctx context.Context, messageID string) error {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	// Only a sent message is promoted; delivered/seen never regress.
	updated, err := uc.messageRepo.MarkDelivered(ctx, messageID)
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	uc.notifier.MessageStatus(message.SenderID, models.MessageStatusEvent{
		MessageID: messageID,
		Status:    models.StatusDelivered,
	})
	return nil
}

func (uc *messageUsecase) Edit(ctx context.Context, messageID, editorID, newText string) (*models.Message, error) {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return nil, models.Validationf("message text must not be empty")
	}

	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != editorID {
		return nil, models.Forbiddenf("you can only edit your own messages")
	}
	if !message.Editable(time.Now()) {
		return nil, models.Validationf("can't edit messages older than %d minutes", int(models.EditWindow.Minutes()))
	}

	prev := models.EditRecord{
		Text:     message.Text,
		EditedAt: time.Now(),
	}
	updated, err := uc.messageRepo.AppendEdit(ctx, messageID, prev, newText)
	if err != nil {
		return nil, err
	}

	uc.notifier.MessageEdited(message.ReceiverID, models.MessageEditedEvent{
		MessageID: messageID,
		NewText:   newText,
		IsEdited:  true,
	})
	return updated, nil
}

func (uc *messageUsecase) Delete(ctx context.Context, messageID, callerID string, scope models.DeleteScope) error {
	if !scope.Valid() {
		return models.Validationf("deleteFor must be %q or %q", models.DeleteForMe, models.DeleteForEveryone)
	}

	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != callerID && message.ReceiverID != callerID {
		return models.ErrForbidden
	}

	if scope == models.DeleteForMe {
		// Soft delete: hides the message from the caller only, so there is
		// nothing to broadcast.
		return uc.messageRepo.AddDeletedFor(ctx, messageID, callerID)
	}

	if message.SenderID != callerID {
		return models.Forbiddenf("can only delete your own messages for everyone")
	}

	if mediaURL := message.MediaURL(); mediaURL != "" {
		// Best effort: a media host failure must not keep the record alive.
		if err := uc.mediaStore.Delete(ctx, mediaURL); err != nil {
			log.Errorw(ctx, "delete hosted media", "message_id", messageID, "error", err)
		}
	}

	if err := uc.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	uc.notifier.MessageDeleted(models.MessageDeletedEvent{
		MessageID: messageID,
		DeleteFor: models.DeleteForEveryone,
	})
	return nil
}
