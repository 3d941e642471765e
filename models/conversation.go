package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies who produced a message
type MessageRole string

const (
	RoleUser   MessageRole = "user"
	RoleBot    MessageRole = "bot"
	RoleError  MessageRole = "error"
	RoleSystem MessageRole = "system"
	// RoleIntel is the product-voice tag used for announcements injected
	// into a conversation by the application itself.
	RoleIntel MessageRole = "AURORA INTEL"
)

// ValidRole reports whether r is one of the enumerated message roles.
func ValidRole(r MessageRole) bool {
	switch r {
	case RoleUser, RoleBot, RoleError, RoleSystem, RoleIntel:
		return true
	}
	return false
}

// MaxTitleLength is the persisted limit for conversation titles.
const MaxTitleLength = 100

// Message is a single entry in a conversation. Messages have no identity of
// their own; they exist only inside their conversation, in insertion order.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Conversation is a titled, append-only sequence of messages owned by one user
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	LastActivity time.Time `json:"lastActivity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
// Message bodies are deliberately excluded.
type ConversationSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	LastActivity time.Time `json:"lastUpdate"`
	CreatedAt    time.Time `json:"created_at"`
}
