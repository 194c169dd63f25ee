package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/models"
)

type staticToken string

func (t staticToken) Token() (string, bool) { return string(t), t != "" }

func TestHTTPListChats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chats", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.Chat{{ID: 1, Participants: [2]int{7, 8}, UnreadCount: 2}})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken("tok-123"))
	chats, err := src.ListChats(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, 2, chats[0].UnreadCount)
}

func TestHTTPSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Sender   int    `json:"sender"`
			Receiver int    `json:"receiver"`
			Content  string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body.Sender)
		assert.Equal(t, 2, body.Receiver)
		assert.Equal(t, "hi", body.Content)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Message{ID: 9, Sender: 1, Receiver: 2, Content: "hi"})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken("tok"))
	msg, err := src.SendMessage(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, 9, msg.ID)
}

func TestHTTPMarkAsRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/messages/5/read", r.URL.Path)
		json.NewEncoder(w).Encode(models.Message{ID: 5, Read: true})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken("tok"))
	msg, err := src.MarkAsRead(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, msg.Read)
}

func TestHTTPGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/3", r.URL.Path)
		json.NewEncoder(w).Encode(models.User{ID: 3, Username: "developer"})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken("tok"))
	user, err := src.GetUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "developer", user.Username)
}

func TestHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken("tok"))
	_, err := src.MarkAsRead(context.Background(), 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken("tok"))
	_, err := src.ListChats(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPTransportErrorIsUnavailable(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1", staticToken("tok"))
	_, err := src.ListChats(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPMissingTokenMakesNoRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, staticToken(""))
	_, err := src.ListChats(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, requests)
}
