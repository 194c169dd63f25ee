package models

// Chat is the unique conversation between an unordered pair of users.
// LastMessage is nil until a message exists. UnreadCount is the number of
// messages addressed to the viewer that are still unread.
type Chat struct {
	ID           int      `json:"id"`
	Participants [2]int   `json:"participants"`
	LastMessage  *Message `json:"lastMessage,omitempty"`
	UnreadCount  int      `json:"unreadCount"`
}

// HasParticipant reports whether userID is one of the chat's two participants.
func (c Chat) HasParticipant(userID int) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// OtherParticipant returns the participant that is not viewerID. When
// viewerID is not part of the chat it returns the first participant.
func (c Chat) OtherParticipant(viewerID int) int {
	if c.Participants[0] == viewerID {
		return c.Participants[1]
	}
	return c.Participants[0]
}
