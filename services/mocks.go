package services

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"pepperbackend/models"
)

// MockUsersService is a mock implementation of UsersService
type MockUsersService struct {
	mock.Mock
}

func (m *MockUsersService) GetOrCreateUser(
	ctx context.Context,
	authProvider, authProviderID, email string,
) (*models.User, error) {
	args := m.Called(ctx, authProvider, authProviderID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersService) GetUserByID(ctx context.Context, id string) (mo.Option[*models.User], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.User]), args.Error(1)
}

// MockOAuthService is a mock implementation of OAuthService
type MockOAuthService struct {
	mock.Mock
}

func (m *MockOAuthService) StartDeviceFlow(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (*models.OAuthSession, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OAuthSession), args.Error(1)
}

func (m *MockOAuthService) PollDeviceFlow(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (*models.PollResult, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PollResult), args.Error(1)
}

func (m *MockOAuthService) Disconnect(ctx context.Context, userID string, provider models.CalendarProvider) error {
	args := m.Called(ctx, userID, provider)
	return args.Error(0)
}

func (m *MockOAuthService) RefreshToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (*models.ProviderToken, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderToken), args.Error(1)
}

func (m *MockOAuthService) ValidAccessToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (string, error) {
	args := m.Called(ctx, userID, provider)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthService) ConnectedProviders(
	ctx context.Context,
	userID string,
) ([]models.CalendarProvider, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarProvider), args.Error(1)
}

// MockConversationsService is a mock implementation of ConversationsService
type MockConversationsService struct {
	mock.Mock
}

func (m *MockConversationsService) ProcessMessage(
	ctx context.Context,
	userID, conversationID, text string,
) (*models.AssistantReply, error) {
	args := m.Called(ctx, userID, conversationID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssistantReply), args.Error(1)
}

func (m *MockConversationsService) StreamMessage(
	ctx context.Context,
	userID, conversationID, text string,
	onDelta func(string),
) (*models.AssistantReply, error) {
	args := m.Called(ctx, userID, conversationID, text, onDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssistantReply), args.Error(1)
}

func (m *MockConversationsService) ListConversations(
	ctx context.Context,
	userID string,
) ([]*models.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Conversation), args.Error(1)
}

func (m *MockConversationsService) ListMessages(
	ctx context.Context,
	userID, conversationID string,
) ([]*models.ConversationMessage, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConversationMessage), args.Error(1)
}

// MockCalendarService is a mock implementation of CalendarService
type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) ListUpcomingEvents(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
	days int,
) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, userID, provider, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarEvent), args.Error(1)
}

func (m *MockCalendarService) CreateEvent(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
	event *models.CalendarEvent,
) (*models.CalendarEvent, error) {
	args := m.Called(ctx, userID, provider, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarEvent), args.Error(1)
}

// MockNotesService is a mock implementation of NotesService
type MockNotesService struct {
	mock.Mock
}

func (m *MockNotesService) CreateNote(ctx context.Context, userID, content string) (*models.Note, error) {
	args := m.Called(ctx, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNotesService) ListNotes(ctx context.Context, userID string) ([]*models.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Note), args.Error(1)
}

// MockUsageService is a mock implementation of UsageService
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) TrackUsage(
	ctx context.Context,
	userID, conversationID string,
	inputTokens, outputTokens int,
) error {
	args := m.Called(ctx, userID, conversationID, inputTokens, outputTokens)
	return args.Error(0)
}

func (m *MockUsageService) GetConversationUsage(
	ctx context.Context,
	conversationID string,
) (mo.Option[*models.ConversationUsage], error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(mo.Option[*models.ConversationUsage]), args.Error(1)
}

// PassthroughTxManager runs the function without a real transaction. For tests.
type PassthroughTxManager struct{}

func (PassthroughTxManager) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
