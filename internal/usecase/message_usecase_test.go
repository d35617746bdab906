package usecase

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chatterbox-im/chatterbox/internal/models"
)

type fakeMessageRepo struct {
	messages map[string]*models.Message
}

func newFakeMessageRepo(msgs ...*models.Message) *fakeMessageRepo {
	r := &fakeMessageRepo{messages: map[string]*models.Message{}}
	for _, m := range msgs {
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		r.messages[m.ID.Hex()] = m
	}
	return r
}

func (r *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.messages[m.ID.Hex()] = m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) GetConversation(_ context.Context, userID, peerID string) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.messages {
		between := (m.SenderID == userID && m.ReceiverID == peerID) ||
			(m.SenderID == peerID && m.ReceiverID == userID)
		if between && !m.HiddenFor(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) AddSeen(_ context.Context, id, viewerID string) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !m.SeenBy(viewerID) {
		m.Seen = append(m.Seen, viewerID)
	}
	m.Status = models.StatusSeen
	return m, nil
}

func (r *fakeMessageRepo) MarkDelivered(_ context.Context, id string) (bool, error) {
	m, ok := r.messages[id]
	if !ok {
		return false, models.ErrNotFound
	}
	if m.Status != models.StatusSent {
		return false, nil
	}
	m.Status = models.StatusDelivered
	return true, nil
}

func (r *fakeMessageRepo) AppendEdit(_ context.Context, id string, prev models.EditRecord, newText string) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	m.EditHistory = append(m.EditHistory, prev)
	m.Text = newText
	m.IsEdited = true
	return m, nil
}

func (r *fakeMessageRepo) AddDeletedFor(_ context.Context, id, userID string) error {
	m, ok := r.messages[id]
	if !ok {
		return models.ErrNotFound
	}
	if !m.HiddenFor(userID) {
		m.DeletedFor = append(m.DeletedFor, userID)
	}
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.messages[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) LastBetween(_ context.Context, userID, peerID string) (*models.Message, error) {
	var last *models.Message
	for _, m := range r.messages {
		between := (m.SenderID == userID && m.ReceiverID == peerID) ||
			(m.SenderID == peerID && m.ReceiverID == userID)
		if !between || m.HiddenFor(userID) {
			continue
		}
		if last == nil || m.CreatedAt.After(last.CreatedAt) {
			last = m
		}
	}
	if last == nil {
		return nil, models.ErrNotFound
	}
	return last, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, userID, peerID string) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.SenderID == peerID && m.ReceiverID == userID && !m.SeenBy(userID) && !m.HiddenFor(userID) {
			count++
		}
	}
	return count, nil
}

type fakeMediaStore struct {
	uploads   int
	deletes   []string
	uploadErr error
}

func (s *fakeMediaStore) Upload(_ context.Context, payload *models.MediaPayload) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads++
	return "https://media.test/" + payload.Folder() + "/obj", nil
}

func (s *fakeMediaStore) Delete(_ context.Context, mediaURL string) error {
	s.deletes = append(s.deletes, mediaURL)
	return nil
}

type notification struct {
	event  string
	target string
	data   any
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) NewMessage(receiverID string, msg *models.Message) {
	n.sent = append(n.sent, notification{models.EventNewMessage, receiverID, msg})
}

func (n *fakeNotifier) MessageEdited(receiverID string, ev models.MessageEditedEvent) {
	n.sent = append(n.sent, notification{models.EventMessageEdited, receiverID, ev})
}

func (n *fakeNotifier) MessageDeleted(ev models.MessageDeletedEvent) {
	n.sent = append(n.sent, notification{models.EventMessageDeleted, "", ev})
}

func (n *fakeNotifier) MessageStatus(senderID string, ev models.MessageStatusEvent) {
	n.sent = append(n.sent, notification{models.EventMessageStatus, senderID, ev})
}

func (n *fakeNotifier) ProfileUpdated(originID string, ev models.ProfileUpdateEvent) {
	n.sent = append(n.sent, notification{models.EventProfileUpdated, originID, ev})
}

func (n *fakeNotifier) events() []string {
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.event
	}
	return out
}

func newTestUsecase(repo *fakeMessageRepo) (MessageUsecase, *fakeMediaStore, *fakeNotifier) {
	store := &fakeMediaStore{}
	notifier := &fakeNotifier{}
	return NewMessageUsecase(repo, store, notifier), store, notifier
}

func imageDataURI(size int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", size)))
}

func TestSendTextMessage(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, _, notifier := newTestUsecase(repo)

	msg, err := uc.Send(context.Background(), SendMessageParams{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.False(t, msg.ID.IsZero())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.EventNewMessage, notifier.sent[0].event)
	assert.Equal(t, "bob", notifier.sent[0].target)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, _, notifier := newTestUsecase(repo)

	_, err := uc.Send(context.Background(), SendMessageParams{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "   ",
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, notifier.sent)
	assert.Empty(t, repo.messages)
}

func TestSendWithMedia(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, store, _ := newTestUsecase(repo)

	msg, err := uc.Send(context.Background(), SendMessageParams{
		SenderID:   "alice",
		ReceiverID: "bob",
		Media:      imageDataURI(16),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.uploads)
	assert.Contains(t, msg.ImageURL, "messages/images")
	assert.Empty(t, msg.VideoURL)
}

func TestSendOversizedMediaRejectedBeforeUpload(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, store, notifier := newTestUsecase(repo)

	_, err := uc.Send(context.Background(), SendMessageParams{
		SenderID:   "alice",
		ReceiverID: "bob",
		Media:      imageDataURI(11 << 20),
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Zero(t, store.uploads, "oversized media must never reach the store")
	assert.Empty(t, notifier.sent)
	assert.Empty(t, repo.messages)
}

func TestSendUploadFailureAbortsSend(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, store, notifier := newTestUsecase(repo)
	store.uploadErr = models.Upstreamf("bucket down")

	_, err := uc.Send(context.Background(), SendMessageParams{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "with attachment",
		Media:      imageDataURI(16),
	})
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Empty(t, repo.messages, "no partial record on upload failure")
	assert.Empty(t, notifier.sent)
}

func TestMarkSeenNotifiesSender(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi", Status: models.StatusDelivered}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	require.NoError(t, uc.MarkSeen(context.Background(), msg.ID.Hex(), "bob"))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.EventMessageStatus, notifier.sent[0].event)
	assert.Equal(t, "alice", notifier.sent[0].target)
	ev := notifier.sent[0].data.(models.MessageStatusEvent)
	assert.Equal(t, models.StatusSeen, ev.Status)
}

func TestMarkSeenIdempotent(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi", Status: models.StatusDelivered}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	id := msg.ID.Hex()
	require.NoError(t, uc.MarkSeen(context.Background(), id, "bob"))
	require.NoError(t, uc.MarkSeen(context.Background(), id, "bob"))
	require.NoError(t, uc.MarkSeen(context.Background(), id, "bob"))

	assert.Len(t, notifier.sent, 1, "repeat seen must not renotify")
	assert.Equal(t, []string{"bob"}, repo.messages[id].Seen)
}

func TestMarkDeliveredOnlyPromotesSent(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi", Status: models.StatusSent}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	id := msg.ID.Hex()
	require.NoError(t, uc.MarkDelivered(context.Background(), id))
	assert.Equal(t, models.StatusDelivered, repo.messages[id].Status)
	assert.Len(t, notifier.sent, 1)

	// A second delivery report is dropped silently.
	require.NoError(t, uc.MarkDelivered(context.Background(), id))
	assert.Len(t, notifier.sent, 1)
}

func TestMarkDeliveredNeverRegressesSeen(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi", Status: models.StatusSeen, Seen: []string{"bob"}}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	id := msg.ID.Hex()
	require.NoError(t, uc.MarkDelivered(context.Background(), id))
	assert.Equal(t, models.StatusSeen, repo.messages[id].Status)
	assert.Empty(t, notifier.sent)
}

func TestEditWithinWindow(t *testing.T) {
	msg := &models.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "original",
		CreatedAt:  time.Now().Add(-9 * time.Minute),
	}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	updated, err := uc.Edit(context.Background(), msg.ID.Hex(), "alice", "corrected")
	require.NoError(t, err)
	assert.Equal(t, "corrected", updated.Text)
	assert.True(t, updated.IsEdited)
	require.Len(t, updated.EditHistory, 1)
	assert.Equal(t, "original", updated.EditHistory[0].Text)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.EventMessageEdited, notifier.sent[0].event)
	assert.Equal(t, "bob", notifier.sent[0].target)
}

func TestEditAfterWindowRejected(t *testing.T) {
	msg := &models.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "original",
		CreatedAt:  time.Now().Add(-11 * time.Minute),
	}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	_, err := uc.Edit(context.Background(), msg.ID.Hex(), "alice", "too late")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "original", repo.messages[msg.ID.Hex()].Text)
	assert.Empty(t, notifier.sent)
}

func TestEditByNonSenderForbidden(t *testing.T) {
	msg := &models.Message{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "original",
		CreatedAt:  time.Now(),
	}
	repo := newFakeMessageRepo(msg)
	uc, _, _ := newTestUsecase(repo)

	_, err := uc.Edit(context.Background(), msg.ID.Hex(), "bob", "hijacked")
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestEditMissingMessage(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, _, _ := newTestUsecase(repo)

	_, err := uc.Edit(context.Background(), primitive.NewObjectID().Hex(), "alice", "text")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestDeleteForMeHidesWithoutBroadcast(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	id := msg.ID.Hex()
	require.NoError(t, uc.Delete(context.Background(), id, "bob", models.DeleteForMe))

	stored := repo.messages[id]
	require.NotNil(t, stored, "record survives a delete-for-me")
	assert.True(t, stored.HiddenFor("bob"))
	assert.False(t, stored.HiddenFor("alice"))
	assert.Empty(t, notifier.sent)
}

func TestDeleteForEveryoneBySender(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi", ImageURL: "https://media.test/messages/images/obj"}
	repo := newFakeMessageRepo(msg)
	uc, store, notifier := newTestUsecase(repo)

	id := msg.ID.Hex()
	require.NoError(t, uc.Delete(context.Background(), id, "alice", models.DeleteForEveryone))

	assert.Empty(t, repo.messages)
	assert.Equal(t, []string{"https://media.test/messages/images/obj"}, store.deletes)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.EventMessageDeleted, notifier.sent[0].event)
}

func TestDeleteForEveryoneByReceiverForbidden(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	repo := newFakeMessageRepo(msg)
	uc, _, notifier := newTestUsecase(repo)

	err := uc.Delete(context.Background(), msg.ID.Hex(), "bob", models.DeleteForEveryone)
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Len(t, repo.messages, 1)
	assert.Empty(t, notifier.sent)
}

func TestDeleteByStrangerForbidden(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	repo := newFakeMessageRepo(msg)
	uc, _, _ := newTestUsecase(repo)

	err := uc.Delete(context.Background(), msg.ID.Hex(), "mallory", models.DeleteForMe)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestDeleteInvalidScope(t *testing.T) {
	msg := &models.Message{SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	repo := newFakeMessageRepo(msg)
	uc, _, _ := newTestUsecase(repo)

	err := uc.Delete(context.Background(), msg.ID.Hex(), "alice", models.DeleteScope("later"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMessageLifecycleEventFlow(t *testing.T) {
	repo := newFakeMessageRepo()
	uc, _, notifier := newTestUsecase(repo)
	ctx := context.Background()

	msg, err := uc.Send(ctx, SendMessageParams{SenderID: "alice", ReceiverID: "bob", Text: "hello"})
	require.NoError(t, err)
	id := msg.ID.Hex()

	require.NoError(t, uc.MarkDelivered(ctx, id))
	require.NoError(t, uc.MarkSeen(ctx, id, "bob"))
	_, err = uc.Edit(ctx, id, "alice", "hello again")
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, id, "alice", models.DeleteForEveryone))

	assert.Equal(t, []string{
		models.EventNewMessage,
		models.EventMessageStatus,
		models.EventMessageStatus,
		models.EventMessageEdited,
		models.EventMessageDeleted,
	}, notifier.events())
}
