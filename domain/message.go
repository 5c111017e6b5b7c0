// Package domain contains core concepts of the messaging system.
// This file defines direct messages exchanged between two users.
// Messages are immutable once stored.
package domain

import (
	"time"
)

// Message is a text sent by one user to another.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Involves reports whether the message belongs to the conversation between a and b,
// regardless of direction.
func (m Message) Involves(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) ||
		(m.SenderID == b && m.ReceiverID == a)
}
