package messaging

import (
	"sync"
	"time"

	"messenger/internal/models"
)

// Store holds the mock variant's in-memory state. It is owned by whoever
// constructs it and passed into NewMock, so tests get isolated stores.
// All access goes through the mutex; individual operations are atomic.
type Store struct {
	mu sync.Mutex

	users    []models.User
	messages []models.Message
	chats    []models.Chat

	nextMessageID int
	nextChatID    int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nextMessageID: 1, nextChatID: 1}
}

// AddUser registers a user in the store's directory.
func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// SeedStore builds a store with the demo fixture set: three users and two
// conversations from viewer 1's perspective, each with one unread message.
func SeedStore() *Store {
	s := NewStore()
	s.users = []models.User{
		{ID: 1, Username: "testuser", Email: "test@example.com", FirstName: "Test", LastName: "User", Avatar: "https://i.pravatar.cc/150?img=1", Online: true},
		{ID: 2, Username: "admin", Email: "admin@example.com", FirstName: "Site", LastName: "Admin", Avatar: "https://i.pravatar.cc/150?img=2", Online: true},
		{ID: 3, Username: "developer", Email: "dev@example.com", FirstName: "Project", LastName: "Developer", Avatar: "https://i.pravatar.cc/150?img=3"},
	}

	day1 := time.Date(2025, time.April, 3, 10, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, time.April, 2, 15, 20, 0, 0, time.UTC)
	s.messages = []models.Message{
		{ID: 1, Sender: 2, Receiver: 1, Content: "Hey! How is the new project going?", Timestamp: day1, Read: true},
		{ID: 2, Sender: 1, Receiver: 2, Content: "Hi! All on track, finishing the first part.", Timestamp: day1.Add(2 * time.Minute), Read: true},
		{ID: 3, Sender: 2, Receiver: 1, Content: "Great! When do you plan to wrap up?", Timestamp: day1.Add(3 * time.Minute), Read: true},
		{ID: 4, Sender: 1, Receiver: 2, Content: "Everything should be ready by the end of the week.", Timestamp: day1.Add(5 * time.Minute), Read: true},
		{ID: 5, Sender: 2, Receiver: 1, Content: "Perfect, let's review the results on Monday.", Timestamp: day1.Add(6 * time.Minute), Read: false},
		{ID: 6, Sender: 3, Receiver: 1, Content: "Hey! Have you seen the new release?", Timestamp: day2, Read: true},
		{ID: 7, Sender: 1, Receiver: 3, Content: "Yes, already testing it. Looks great!", Timestamp: day2.Add(2 * time.Minute), Read: true},
		{ID: 8, Sender: 3, Receiver: 1, Content: "What do you think of the new features?", Timestamp: day2.Add(5 * time.Minute), Read: false},
	}
	s.nextMessageID = 9

	// The chats keep their own copies of the last message so that growing
	// the message slice cannot leave them pointing at a stale backing array.
	last1, last2 := s.messages[4], s.messages[7]
	s.chats = []models.Chat{
		{ID: 1, Participants: [2]int{1, 2}, LastMessage: &last1, UnreadCount: 1},
		{ID: 2, Participants: [2]int{1, 3}, LastMessage: &last2, UnreadCount: 1},
	}
	s.nextChatID = 3

	return s
}

// chatForPair returns the index of the chat containing both users, or -1.
func (s *Store) chatForPair(a, b int) int {
	for i, c := range s.chats {
		if c.HasParticipant(a) && c.HasParticipant(b) {
			return i
		}
	}
	return -1
}
