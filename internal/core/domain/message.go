package domain

// ChatID identifies one chat session.
type ChatID string

// UserID identifies one chat participant.
type UserID string

// Message is one chat message as stored in the hosted KV record set and
// mirrored into the relational store.
type Message struct {
	ID        string `json:"id"`
	ChatID    ChatID `json:"chat_id"`
	UserID    UserID `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}
