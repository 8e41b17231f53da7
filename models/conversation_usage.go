package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversationUsage tracks token usage and estimated costs for a conversation
type ConversationUsage struct {
	ID                string          `db:"id"                  json:"id"`
	UserID            string          `db:"user_id"             json:"user_id"`
	ConversationID    string          `db:"conversation_id"     json:"conversation_id"`
	TotalInputTokens  int             `db:"total_input_tokens"  json:"total_input_tokens"`
	TotalOutputTokens int             `db:"total_output_tokens" json:"total_output_tokens"`
	EstimatedCostUSD  decimal.Decimal `db:"estimated_cost_usd"  json:"estimated_cost_usd"`
	CreatedAt         time.Time       `db:"created_at"          json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"          json:"updated_at"`
}

// TotalTokens returns the sum of input and output tokens
func (u *ConversationUsage) TotalTokens() int {
	return u.TotalInputTokens + u.TotalOutputTokens
}
