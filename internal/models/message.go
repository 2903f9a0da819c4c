package models

import "time"

// Message is one chat line. ConversationID is the receiver's user id; the
// admin side of every conversation is the shared admin pool. Seq is unique
// and strictly increasing within a conversation.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderRole     string    `json:"sender_role"`
	Text           string    `json:"text"`
	Seq            int64     `json:"seq"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is an admin-side index entry: one receiver plus the most
// recent message exchanged with them.
type Conversation struct {
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name"`
	LastMessage string    `json:"last_message"`
	LastSeq     int64     `json:"last_seq"`
	LastAt      time.Time `json:"last_at"`
	Online      bool      `json:"online"`
}
