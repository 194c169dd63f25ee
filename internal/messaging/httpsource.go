package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"messenger/internal/models"
)

// TokenSource provides the bearer token attached to every outgoing request.
// The session store implements it.
type TokenSource interface {
	Token() (string, bool)
}

// HTTPSource is the remote data source variant backed by the messenger API.
type HTTPSource struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

// NewHTTPSource builds a remote data source speaking to baseURL.
func NewHTTPSource(baseURL string, tokens TokenSource) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Service = (*HTTPSource)(nil)
var _ Directory = (*HTTPSource)(nil)

func (s *HTTPSource) do(ctx context.Context, method, path string, body any, out any) error {
	token, ok := s.tokens.Token()
	if !ok {
		return ErrUnauthenticated
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthenticated)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrUnavailable)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// ListChats fetches the viewer's chats.
func (s *HTTPSource) ListChats(ctx context.Context, viewerID int) ([]models.Chat, error) {
	var chats []models.Chat
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/chats?userId=%d", viewerID), nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// ListMessages fetches the messages of a chat.
func (s *HTTPSource) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/chats/%d/messages", chatID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a new message.
func (s *HTTPSource) SendMessage(ctx context.Context, senderID, receiverID int, content string) (models.Message, error) {
	body := struct {
		Sender   int    `json:"sender"`
		Receiver int    `json:"receiver"`
		Content  string `json:"content"`
	}{senderID, receiverID, content}

	var msg models.Message
	if err := s.do(ctx, http.MethodPost, "/messages", body, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// MarkAsRead flags a message as read on the backend.
func (s *HTTPSource) MarkAsRead(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("/messages/%d/read", messageID), nil, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// GetUser resolves a user from the backend directory.
func (s *HTTPSource) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
