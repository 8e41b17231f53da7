package conversations

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"pepperbackend/clients"
	"pepperbackend/models"
)

// MockConversationsRepository is a mock implementation of ConversationsRepository
type MockConversationsRepository struct {
	mock.Mock
}

func (m *MockConversationsRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationsRepository) GetConversationByID(
	ctx context.Context,
	userID, conversationID string,
) (mo.Option[*models.Conversation], error) {
	args := m.Called(ctx, userID, conversationID)
	return args.Get(0).(mo.Option[*models.Conversation]), args.Error(1)
}

func (m *MockConversationsRepository) GetConversationsByUserID(
	ctx context.Context,
	userID string,
) ([]*models.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Conversation), args.Error(1)
}

func (m *MockConversationsRepository) CreateMessage(ctx context.Context, message *models.ConversationMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockConversationsRepository) GetMessagesByConversationID(
	ctx context.Context,
	conversationID string,
	limit int,
) ([]*models.ConversationMessage, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConversationMessage), args.Error(1)
}

func (m *MockConversationsRepository) TouchConversation(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

// MockAnthropicClient is a mock implementation of clients.AnthropicClient
type MockAnthropicClient struct {
	mock.Mock
}

func (m *MockAnthropicClient) CompleteMessage(
	ctx context.Context,
	system string,
	messages []clients.ChatMessage,
) (*clients.ChatCompletion, error) {
	args := m.Called(ctx, system, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.ChatCompletion), args.Error(1)
}

func (m *MockAnthropicClient) StreamMessage(
	ctx context.Context,
	system string,
	messages []clients.ChatMessage,
	onDelta func(string),
) (*clients.ChatCompletion, error) {
	args := m.Called(ctx, system, messages, onDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	completion := args.Get(0).(*clients.ChatCompletion)
	if onDelta != nil {
		onDelta(completion.Content)
	}
	return completion, args.Error(1)
}
