package messaging

import (
	"context"
	"fmt"
	"sort"
	"time"

	"messenger/internal/models"
)

// DefaultLatency is the artificial delay applied to every mock operation to
// simulate a round trip. Tests pass zero.
const DefaultLatency = 300 * time.Millisecond

// Mock is the in-memory data source used for development and tests. It never
// fails at the transport level, only logically.
//
// Known quirk: sending into an existing chat does not increment its unread
// counter; only a newly created chat starts at one. See
// TestSendToExistingChatDoesNotIncrementUnread.
type Mock struct {
	store   *Store
	latency time.Duration
	now     func() time.Time
}

// NewMock builds a mock data source over the given store.
func NewMock(store *Store, latency time.Duration) *Mock {
	return &Mock{store: store, latency: latency, now: time.Now}
}

var _ Service = (*Mock)(nil)
var _ Directory = (*Mock)(nil)

// delay simulates network latency, honoring context cancellation.
func (m *Mock) delay(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ListChats returns the chats viewerID participates in.
func (m *Mock) ListChats(ctx context.Context, viewerID int) ([]models.Chat, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var chats []models.Chat
	for _, c := range m.store.chats {
		if !c.HasParticipant(viewerID) {
			continue
		}
		if c.LastMessage != nil {
			last := *c.LastMessage
			c.LastMessage = &last
		}
		chats = append(chats, c)
	}
	return chats, nil
}

// ListMessages returns the messages between the chat's participants in
// ascending timestamp order. An unknown chat id yields an empty result,
// not an error.
func (m *Mock) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var chat *models.Chat
	for i := range m.store.chats {
		if m.store.chats[i].ID == chatID {
			chat = &m.store.chats[i]
			break
		}
	}
	if chat == nil {
		return []models.Message{}, nil
	}

	var msgs []models.Message
	for _, msg := range m.store.messages {
		if chat.HasParticipant(msg.Sender) && chat.HasParticipant(msg.Receiver) {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

// SendMessage appends a new unread message and updates or creates the pair's chat.
func (m *Mock) SendMessage(ctx context.Context, senderID, receiverID int, content string) (models.Message, error) {
	if err := m.delay(ctx); err != nil {
		return models.Message{}, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	msg := models.Message{
		ID:        m.store.nextMessageID,
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		Timestamp: m.now(),
		Read:      false,
	}
	m.store.nextMessageID++
	m.store.messages = append(m.store.messages, msg)

	last := msg
	if i := m.store.chatForPair(senderID, receiverID); i >= 0 {
		m.store.chats[i].LastMessage = &last
	} else {
		m.store.chats = append(m.store.chats, models.Chat{
			ID:           m.store.nextChatID,
			Participants: [2]int{senderID, receiverID},
			LastMessage:  &last,
			UnreadCount:  1,
		})
		m.store.nextChatID++
	}
	return msg, nil
}

// MarkAsRead flips the message's read flag. When the owning chat cannot be
// located the counter adjustment is silently skipped; tests rely on that
// asymmetry.
func (m *Mock) MarkAsRead(ctx context.Context, messageID int) (models.Message, error) {
	if err := m.delay(ctx); err != nil {
		return models.Message{}, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	idx := -1
	for i := range m.store.messages {
		if m.store.messages[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Message{}, fmt.Errorf("message %d: %w", messageID, ErrNotFound)
	}

	m.store.messages[idx].Read = true
	msg := m.store.messages[idx]

	if i := m.store.chatForPair(msg.Sender, msg.Receiver); i >= 0 {
		chat := &m.store.chats[i]
		if chat.UnreadCount > 0 {
			chat.UnreadCount--
		}
		if chat.LastMessage != nil && chat.LastMessage.ID == msg.ID {
			chat.LastMessage.Read = true
		}
	}
	return msg, nil
}

// GetUser resolves a user from the store's directory.
func (m *Mock) GetUser(ctx context.Context, userID int) (models.User, error) {
	if err := m.delay(ctx); err != nil {
		return models.User{}, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, u := range m.store.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
}
