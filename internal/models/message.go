package models

import "time"

// Message is a direct message between two users. Sender and Receiver are
// always distinct. Read flips false to true exactly once and never reverts.
type Message struct {
	ID        int       `db:"id" json:"id"`
	Sender    int       `db:"sender_id" json:"sender"`
	Receiver  int       `db:"receiver_id" json:"receiver"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
	Read      bool      `db:"read" json:"read"`
}
