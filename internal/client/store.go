package client

import (
	"sort"
	"sync"

	"github.com/chatterbox-im/chatterbox/internal/models"
)

// SidebarUser is a contact row: the user plus the conversation preview
// derived from the newest message exchanged with them.
type SidebarUser struct {
	User        models.User
	LastMessage *models.Message
	Unread      int
	Online      bool
}

// Store is the client-side cache of the chat state. The open message
// list and the sidebar are updated together inside a single lock so a
// socket event can never leave one of them stale.
type Store struct {
	mu         sync.Mutex
	selfID     string
	activePeer string
	messages   []models.Message
	users      map[string]*SidebarUser
}

func NewStore(selfID string) *Store {
	return &Store{
		selfID: selfID,
		users:  map[string]*SidebarUser{},
	}
}

func (s *Store) SelfID() string {
	return s.selfID
}

// peerOf returns the other participant of a message.
func (s *Store) peerOf(m *models.Message) string {
	if m.SenderID == s.selfID {
		return m.ReceiverID
	}
	return m.SenderID
}

// SeedSidebar replaces the contacts with the server's enriched listing.
// Presence flags survive the reseed, previews and unread counters are
// taken from the server as the authoritative state.
func (s *Store) SeedSidebar(entries []models.SidebarEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*SidebarUser, len(entries))
	for _, e := range entries {
		id := e.User.ID.Hex()
		su := &SidebarUser{User: e.User, Unread: int(e.Unread)}
		if e.LastMessage != nil {
			last := *e.LastMessage
			su.LastMessage = &last
		}
		if prev, ok := s.users[id]; ok {
			su.Online = prev.Online
		}
		next[id] = su
	}
	s.users = next
}

// OpenConversation switches the active chat, replaces the message list
// and clears the peer's unread counter.
func (s *Store) OpenConversation(peerID string, msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activePeer = peerID
	s.messages = append([]models.Message(nil), msgs...)
	if u, ok := s.users[peerID]; ok {
		u.Unread = 0
		if n := len(msgs); n > 0 {
			last := msgs[n-1]
			u.LastMessage = &last
		}
	}
}

func (s *Store) ActivePeer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePeer
}

// ApplyMessage folds a sent or received message into both caches. A
// message from a peer other than the active one bumps that peer's
// unread counter instead of touching the open list.
func (s *Store) ApplyMessage(m models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	peer := s.peerOf(&m)
	if peer == s.activePeer {
		s.messages = append(s.messages, m)
	} else if m.SenderID != s.selfID {
		if u, ok := s.users[peer]; ok {
			u.Unread++
		}
	}
	if u, ok := s.users[peer]; ok {
		last := m
		u.LastMessage = &last
	}
}

// ApplyStatus advances a message's tick state. Updates only ever move
// forward, a late delivered after seen is dropped.
func (s *Store) ApplyStatus(ev models.MessageStatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID.Hex() != ev.MessageID {
			continue
		}
		if ev.Status.After(s.messages[i].Status) {
			s.messages[i].Status = ev.Status
			s.patchPreview(ev.MessageID, func(m *models.Message) {
				m.Status = ev.Status
			})
		}
		return
	}
}

// ApplyEdited patches the message text in the open list and, when the
// edited message is a sidebar preview, in the sidebar too.
func (s *Store) ApplyEdited(ev models.MessageEditedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID.Hex() == ev.MessageID {
			s.messages[i].Text = ev.NewText
			s.messages[i].IsEdited = ev.IsEdited
			break
		}
	}
	s.patchPreview(ev.MessageID, func(m *models.Message) {
		m.Text = ev.NewText
		m.IsEdited = ev.IsEdited
	})
}

// ApplyDeleted removes the message from the open list and recomputes
// the sidebar preview from what remains.
func (s *Store) ApplyDeleted(ev models.MessageDeletedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var peer string
	kept := s.messages[:0]
	for i := range s.messages {
		if s.messages[i].ID.Hex() == ev.MessageID {
			peer = s.peerOf(&s.messages[i])
			continue
		}
		kept = append(kept, s.messages[i])
	}
	s.messages = kept

	u := s.findPreviewOwner(ev.MessageID)
	if u == nil {
		return
	}
	if peer != "" && u.User.ID.Hex() == peer {
		u.LastMessage = nil
		if n := len(s.messages); n > 0 {
			last := s.messages[n-1]
			u.LastMessage = &last
		}
		return
	}
	// Conversation not loaded, nothing left to derive the preview from.
	u.LastMessage = nil
}

// ApplyProfileUpdated patches the contact's picture wherever it shows.
func (s *Store) ApplyProfileUpdated(ev models.ProfileUpdateEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[ev.UserID]; ok {
		u.User.ProfilePic = ev.ProfilePic
	}
}

// ApplyOnline replaces the presence flags with the authoritative set.
func (s *Store) ApplyOnline(ev models.OnlineUsersEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	online := make(map[string]bool, len(ev.UserIDs))
	for _, id := range ev.UserIDs {
		online[id] = true
	}
	for id, u := range s.users {
		u.Online = online[id]
	}
}

// Messages returns a copy of the open conversation.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

// Sidebar returns the contacts ordered by most recent activity.
func (s *Store) Sidebar() []SidebarUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SidebarUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].LastMessage, out[j].LastMessage
		switch {
		case li == nil && lj == nil:
			return out[i].User.Name < out[j].User.Name
		case lj == nil:
			return true
		case li == nil:
			return false
		case !li.CreatedAt.Equal(lj.CreatedAt):
			return li.CreatedAt.After(lj.CreatedAt)
		}
		return out[i].User.Name < out[j].User.Name
	})
	return out
}

func (s *Store) Unread(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u.Unread
	}
	return 0
}

func (s *Store) patchPreview(messageID string, patch func(*models.Message)) {
	if u := s.findPreviewOwner(messageID); u != nil {
		patch(u.LastMessage)
	}
}

func (s *Store) findPreviewOwner(messageID string) *SidebarUser {
	for _, u := range s.users {
		if u.LastMessage != nil && u.LastMessage.ID.Hex() == messageID {
			return u
		}
	}
	return nil
}
