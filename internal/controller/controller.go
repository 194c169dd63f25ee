// Package controller holds the messaging screen's transient state and
// orchestrates the data source calls behind it.
package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"messenger/internal/messaging"
	"messenger/internal/models"
)

// Fixed user-facing error strings. The UI shows these verbatim; the
// underlying error is logged, never surfaced.
const (
	MsgChatsUnavailable    = "Failed to load chat list"
	MsgMessagesUnavailable = "Failed to load messages"
	MsgSendFailed          = "Failed to send message"
)

var (
	// ErrBlankContent rejects empty or whitespace-only message content
	// before any data source call is made.
	ErrBlankContent = errors.New("blank message content")
	// ErrNoSelection reports a send attempted without a selected chat.
	ErrNoSelection = errors.New("no chat selected")
)

// State is a snapshot of the messaging screen.
type State struct {
	Chats               []models.Chat
	Messages            []models.Message
	SelectedChatID      int // zero means no selection
	SelectedParticipant *models.User
	IsLoading           bool
	IsSending           bool
	Err                 string // empty means no error
	SearchQuery         string
}

// Controller drives the messaging view state for one authenticated viewer.
//
// Read-marking and chat-list refreshes triggered by a message load run as
// detached tasks: their failures are logged and never surfaced, and they do
// not touch the loading indicator. That is a named policy, not an accident.
type Controller struct {
	svc      messaging.Service
	dir      messaging.Directory
	viewerID int

	mu    sync.Mutex
	state State
	users map[int]models.User // participant cache for the synchronous filter

	bg sync.WaitGroup
}

// New builds a controller for viewerID over the given data source.
func New(svc messaging.Service, dir messaging.Directory, viewerID int) *Controller {
	return &Controller{
		svc:      svc,
		dir:      dir,
		viewerID: viewerID,
		users:    make(map[int]models.User),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Chats = append([]models.Chat(nil), c.state.Chats...)
	s.Messages = append([]models.Message(nil), c.state.Messages...)
	return s
}

// Wait blocks until all detached background tasks have finished.
func (c *Controller) Wait() {
	c.bg.Wait()
}

// LoadChats performs the initial chat-list load. On failure the previously
// loaded chats are kept and only the error string changes.
func (c *Controller) LoadChats(ctx context.Context) error {
	c.mu.Lock()
	c.state.IsLoading = true
	c.mu.Unlock()

	chats, err := c.svc.ListChats(ctx, c.viewerID)

	c.mu.Lock()
	c.state.IsLoading = false
	if err != nil {
		c.state.Err = MsgChatsUnavailable
		c.mu.Unlock()
		log.Printf("controller: load chats: %v", err)
		return err
	}
	c.state.Chats = chats
	c.mu.Unlock()

	c.warmUsers(ctx, chats)
	return nil
}

// SelectChat records the selection and loads its messages. At most one
// selection is active; a load whose chat is no longer selected by the time
// it resolves is discarded.
func (c *Controller) SelectChat(ctx context.Context, chatID int) error {
	c.mu.Lock()
	c.state.SelectedChatID = chatID
	c.state.IsLoading = true
	c.mu.Unlock()

	msgs, err := c.svc.ListMessages(ctx, chatID)
	if err != nil {
		c.mu.Lock()
		if c.state.SelectedChatID == chatID {
			c.state.Err = MsgMessagesUnavailable
			c.state.IsLoading = false
		}
		c.mu.Unlock()
		log.Printf("controller: load messages chat=%d: %v", chatID, err)
		return err
	}

	participant := c.resolveParticipant(ctx, chatID)

	c.mu.Lock()
	if c.state.SelectedChatID != chatID {
		// Selection moved on while this load was in flight; the newer
		// load owns the state now.
		c.mu.Unlock()
		return nil
	}
	c.state.Messages = msgs
	c.state.SelectedParticipant = participant
	c.state.IsLoading = false
	c.mu.Unlock()

	// Mark incoming unread messages read and silently refresh the chat
	// list afterward. Neither step touches the loading indicator.
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.markIncomingRead(ctx, msgs)
		c.refreshChats(ctx)
	}()
	return nil
}

// ClearSelection drops the active chat, e.g. when navigating back.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SelectedChatID = 0
	c.state.SelectedParticipant = nil
	c.state.Messages = nil
}

// SendMessage sends content to the selected chat's other participant. Blank
// content is rejected locally with no data source call and no state change.
func (c *Controller) SendMessage(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrBlankContent
	}

	c.mu.Lock()
	if c.state.SelectedChatID == 0 || c.state.SelectedParticipant == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	receiverID := c.state.SelectedParticipant.ID
	c.state.IsSending = true
	c.mu.Unlock()

	msg, err := c.svc.SendMessage(ctx, c.viewerID, receiverID, content)

	c.mu.Lock()
	c.state.IsSending = false
	if err != nil {
		c.state.Err = MsgSendFailed
		c.mu.Unlock()
		log.Printf("controller: send message: %v", err)
		return err
	}
	// New messages are always the newest; appending keeps the order.
	c.state.Messages = append(c.state.Messages, msg)
	c.mu.Unlock()

	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.refreshChats(ctx)
	}()
	return nil
}

// SetSearchQuery updates the chat-list filter query.
func (c *Controller) SetSearchQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SearchQuery = query
}

// FilteredChats applies the search query to the loaded chats: a chat is kept
// when the other participant's handle or full name contains the query,
// case-insensitive. Pure and synchronous; participants are resolved from the
// local cache, never the network.
func (c *Controller) FilteredChats() []models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := strings.ToLower(strings.TrimSpace(c.state.SearchQuery))
	chats := append([]models.Chat(nil), c.state.Chats...)
	if query == "" {
		return chats
	}

	var filtered []models.Chat
	for _, chat := range chats {
		user, ok := c.users[chat.OtherParticipant(c.viewerID)]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(user.Username), query) ||
			strings.Contains(strings.ToLower(user.FullName()), query) {
			filtered = append(filtered, chat)
		}
	}
	return filtered
}

// resolveParticipant diffs the chat's pair against the viewer and looks the
// other user up. A failed lookup is logged and leaves the participant unset.
func (c *Controller) resolveParticipant(ctx context.Context, chatID int) *models.User {
	c.mu.Lock()
	var otherID int
	for _, chat := range c.state.Chats {
		if chat.ID == chatID {
			otherID = chat.OtherParticipant(c.viewerID)
			break
		}
	}
	c.mu.Unlock()
	if otherID == 0 {
		return nil
	}

	user, err := c.lookupUser(ctx, otherID)
	if err != nil {
		log.Printf("controller: resolve participant %d: %v", otherID, err)
		return nil
	}
	return &user
}

func (c *Controller) lookupUser(ctx context.Context, userID int) (models.User, error) {
	c.mu.Lock()
	if user, ok := c.users[userID]; ok {
		c.mu.Unlock()
		return user, nil
	}
	c.mu.Unlock()

	user, err := c.dir.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	c.mu.Lock()
	c.users[userID] = user
	c.mu.Unlock()
	return user, nil
}

// warmUsers fills the participant cache for the filter in the background.
func (c *Controller) warmUsers(ctx context.Context, chats []models.Chat) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		for _, chat := range chats {
			if _, err := c.lookupUser(ctx, chat.OtherParticipant(c.viewerID)); err != nil {
				log.Printf("controller: warm user cache: %v", err)
			}
		}
	}()
}

// markIncomingRead marks every unread message addressed to the viewer as
// read. The calls are order-independent and run concurrently; individual
// failures are logged, not surfaced.
func (c *Controller) markIncomingRead(ctx context.Context, msgs []models.Message) {
	var wg sync.WaitGroup
	for _, msg := range msgs {
		if msg.Receiver != c.viewerID || msg.Read {
			continue
		}
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := c.svc.MarkAsRead(ctx, id); err != nil {
				log.Printf("controller: mark read %d: %v", id, err)
			}
		}(msg.ID)
	}
	wg.Wait()
}

// refreshChats re-fetches the chat list without flickering the loading
// indicator.
func (c *Controller) refreshChats(ctx context.Context) {
	chats, err := c.svc.ListChats(ctx, c.viewerID)
	if err != nil {
		log.Printf("controller: refresh chats: %v", err)
		return
	}
	c.mu.Lock()
	c.state.Chats = chats
	c.mu.Unlock()
}
