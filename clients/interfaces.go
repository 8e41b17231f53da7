package clients

import (
	"context"

	"pepperbackend/models"
)

// OAuthProviderClient is the capability set every calendar provider must
// implement for the device-authorization grant. The coordinator treats all
// providers uniformly through this interface - endpoint URLs, scopes and
// response-shape differences stay below it.
type OAuthProviderClient interface {
	// BeginDeviceAuth starts a device-authorization flow at the provider
	BeginDeviceAuth(ctx context.Context) (*DeviceAuthorization, error)

	// ExchangeDeviceCode polls the token endpoint once. While the user has
	// not finished authorizing it returns ErrAuthorizationPending or
	// ErrSlowDown; terminal rejections are ErrAccessDenied and
	// ErrDeviceCodeExpired.
	ExchangeDeviceCode(ctx context.Context, deviceCode string) (*ProviderTokens, error)

	// RefreshToken exchanges a refresh token for fresh credentials.
	// A provider rejection of the grant is ErrInvalidGrant.
	RefreshToken(ctx context.Context, refreshToken string) (*ProviderTokens, error)
}

// CalendarClient covers provider calendar operations performed with a
// previously obtained access token
type CalendarClient interface {
	ListUpcomingEvents(ctx context.Context, accessToken string, days int) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, accessToken string, event *models.CalendarEvent) (*models.CalendarEvent, error)
}

// CalendarProviderClient bundles both capability sets - the concrete Google
// and Microsoft clients implement it in full
type CalendarProviderClient interface {
	OAuthProviderClient
	CalendarClient
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of conversation history sent to the AI model
type ChatMessage struct {
	Role    string
	Content string
}

// ChatCompletion is the model's reply plus token accounting
type ChatCompletion struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// AnthropicClient produces AI assistant completions
type AnthropicClient interface {
	// CompleteMessage runs one blocking completion
	CompleteMessage(ctx context.Context, system string, messages []ChatMessage) (*ChatCompletion, error)

	// StreamMessage runs one completion, invoking onDelta for each text
	// fragment as it arrives, and returns the accumulated result
	StreamMessage(ctx context.Context, system string, messages []ChatMessage, onDelta func(delta string)) (*ChatCompletion, error)
}
