package services

import (
	"context"

	"github.com/samber/mo"

	"pepperbackend/models"
)

// UsersService defines the interface for user-related operations
type UsersService interface {
	GetOrCreateUser(ctx context.Context, authProvider, authProviderID, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (mo.Option[*models.User], error)
}

// OAuthService coordinates the device authorization flow and the provider
// tokens it produces
type OAuthService interface {
	// StartDeviceFlow begins a new device flow for the provider, replacing
	// any pending flow for the same user and provider
	StartDeviceFlow(ctx context.Context, userID string, provider models.CalendarProvider) (*models.OAuthSession, error)

	// PollDeviceFlow performs one poll attempt against the provider for the
	// user's pending flow
	PollDeviceFlow(ctx context.Context, userID string, provider models.CalendarProvider) (*models.PollResult, error)

	// Disconnect removes the stored token for the provider. Idempotent.
	Disconnect(ctx context.Context, userID string, provider models.CalendarProvider) error

	// RefreshToken refreshes the stored token using its refresh token
	RefreshToken(ctx context.Context, userID string, provider models.CalendarProvider) (*models.ProviderToken, error)

	// ValidAccessToken returns a non-expired access token for the provider,
	// refreshing it first when needed
	ValidAccessToken(ctx context.Context, userID string, provider models.CalendarProvider) (string, error)

	// ConnectedProviders lists providers holding a non-expired access token
	ConnectedProviders(ctx context.Context, userID string) ([]models.CalendarProvider, error)
}

// ConversationsService defines the interface for AI conversation operations
type ConversationsService interface {
	ProcessMessage(ctx context.Context, userID, conversationID, text string) (*models.AssistantReply, error)
	StreamMessage(
		ctx context.Context,
		userID, conversationID, text string,
		onDelta func(string),
	) (*models.AssistantReply, error)
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]*models.ConversationMessage, error)
}

// CalendarService defines the interface for calendar operations across
// connected providers
type CalendarService interface {
	ListUpcomingEvents(
		ctx context.Context,
		userID string,
		provider models.CalendarProvider,
		days int,
	) ([]models.CalendarEvent, error)
	CreateEvent(
		ctx context.Context,
		userID string,
		provider models.CalendarProvider,
		event *models.CalendarEvent,
	) (*models.CalendarEvent, error)
}

// NotesService defines the interface for note operations
type NotesService interface {
	CreateNote(ctx context.Context, userID, content string) (*models.Note, error)
	ListNotes(ctx context.Context, userID string) ([]*models.Note, error)
}

// UsageService defines the interface for conversation usage tracking
type UsageService interface {
	TrackUsage(ctx context.Context, userID, conversationID string, inputTokens, outputTokens int) error
	GetConversationUsage(ctx context.Context, conversationID string) (mo.Option[*models.ConversationUsage], error)
}

// TransactionManager defines the interface for database transaction management
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}
