package api

import (
	"time"

	"pepperbackend/models"
)

// UserModel represents the user data returned by the API
type UserModel struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceFlowStart represents the device-flow start data returned by the API.
// The device code is deliberately absent - the server polls with it on the
// caller's behalf, so the frontend only ever sees the user code.
type DeviceFlowStart struct {
	Provider        models.CalendarProvider `json:"provider"`
	UserCode        string                  `json:"user_code"`
	VerificationURI string                  `json:"verification_uri"`
	IntervalSeconds int                     `json:"interval_seconds"`
	ExpiresAt       time.Time               `json:"expires_at"`
}

// PollResultModel represents the tri-state poll outcome returned by the API
type PollResultModel struct {
	Status          models.PollStatus `json:"status"`
	IntervalSeconds int               `json:"interval_seconds,omitempty"`
}

// ConnectedProviders lists the providers holding a usable token
type ConnectedProviders struct {
	Providers []models.CalendarProvider `json:"providers"`
}

// ConversationModel represents conversation data returned by the API
type ConversationModel struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageModel represents one conversation message returned by the API
type MessageModel struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	Role           models.MessageRole `json:"role"`
	Content        string             `json:"content"`
	IntentKind     models.IntentKind  `json:"intent_kind"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ConversationUsageModel represents per-conversation token usage returned by the API
type ConversationUsageModel struct {
	ConversationID    string `json:"conversation_id"`
	TotalInputTokens  int    `json:"total_input_tokens"`
	TotalOutputTokens int    `json:"total_output_tokens"`
	EstimatedCostUSD  string `json:"estimated_cost_usd"`
}

// NoteModel represents note data returned by the API
type NoteModel struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
