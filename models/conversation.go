package models

import (
	"time"
)

type Conversation struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"user_id"`
	Title     string    `db:"title"      json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type ConversationMessage struct {
	ID             string      `db:"id"              json:"id"`
	ConversationID string      `db:"conversation_id" json:"conversation_id"`
	Role           MessageRole `db:"role"            json:"role"`
	Content        string      `db:"content"         json:"content"`
	IntentKind     IntentKind  `db:"intent_kind"     json:"intent_kind"`
	CreatedAt      time.Time   `db:"created_at"      json:"created_at"`
}

// AssistantReply is the in-memory result of processing one user message
type AssistantReply struct {
	ConversationID string     `json:"conversation_id"`
	Content        string     `json:"content"`
	Intent         IntentKind `json:"intent"`
	InputTokens    int        `json:"-"`
	OutputTokens   int        `json:"-"`
}
