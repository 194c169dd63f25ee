package messaging

import (
	"context"
	"errors"

	"messenger/internal/models"
)

var (
	// ErrNotFound reports a referenced message, chat or user that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable reports a transport or backend failure on the remote variant.
	ErrUnavailable = errors.New("messaging service unavailable")
	// ErrUnauthenticated reports a call made without a viewer session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Service is the messaging data source. The mock and the remote HTTP variant
// implement the same contract and are interchangeable at construction time.
//
// SendMessage does not validate content; rejecting blank input is the
// caller's responsibility.
type Service interface {
	// ListChats returns every chat that viewerID participates in.
	ListChats(ctx context.Context, viewerID int) ([]models.Chat, error)
	// ListMessages returns all messages between the chat's two participants,
	// sorted ascending by timestamp, ties broken by ascending id.
	ListMessages(ctx context.Context, chatID int) ([]models.Message, error)
	// SendMessage stores a new unread message and finds or creates the chat
	// for the pair, updating its last message.
	SendMessage(ctx context.Context, senderID, receiverID int, content string) (models.Message, error)
	// MarkAsRead flips the message's read flag and decrements the owning
	// chat's unread counter, never below zero.
	MarkAsRead(ctx context.Context, messageID int) (models.Message, error)
}

// Directory resolves users by id. The controller uses it to look up the
// other participant of a chat and to filter chats by name.
type Directory interface {
	GetUser(ctx context.Context, userID int) (models.User, error)
}
