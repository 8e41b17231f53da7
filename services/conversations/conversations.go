package conversations

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"pepperbackend/clients"
	"pepperbackend/core"
	"pepperbackend/models"
	"pepperbackend/services"
	"pepperbackend/services/commands"
	"pepperbackend/utils"
)

const (
	// historyLimit bounds how much conversation history is replayed to the
	// model on each turn
	historyLimit = 20

	titleMaxLength = 60
)

// ConversationsRepository is the persistence surface for conversations and
// their messages
type ConversationsRepository interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversationByID(ctx context.Context, userID, conversationID string) (mo.Option[*models.Conversation], error)
	GetConversationsByUserID(ctx context.Context, userID string) ([]*models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.ConversationMessage) error
	GetMessagesByConversationID(ctx context.Context, conversationID string, limit int) ([]*models.ConversationMessage, error)
	TouchConversation(ctx context.Context, conversationID string) error
}

// ConversationsServiceImpl orchestrates one chat turn: route the intent,
// persist the user message, produce the assistant reply and account for the
// tokens it cost
type ConversationsServiceImpl struct {
	conversationsRepo ConversationsRepository
	anthropicClient   clients.AnthropicClient
	notesService      services.NotesService
	usageService      services.UsageService
	txManager         services.TransactionManager
}

func NewConversationsService(
	conversationsRepo ConversationsRepository,
	anthropicClient clients.AnthropicClient,
	notesService services.NotesService,
	usageService services.UsageService,
	txManager services.TransactionManager,
) *ConversationsServiceImpl {
	return &ConversationsServiceImpl{
		conversationsRepo: conversationsRepo,
		anthropicClient:   anthropicClient,
		notesService:      notesService,
		usageService:      usageService,
		txManager:         txManager,
	}
}

// ProcessMessage handles one user message and returns the full assistant reply
func (s *ConversationsServiceImpl) ProcessMessage(
	ctx context.Context,
	userID, conversationID, text string,
) (*models.AssistantReply, error) {
	return s.processTurn(ctx, userID, conversationID, text, func(system string, history []clients.ChatMessage) (*clients.ChatCompletion, error) {
		return s.anthropicClient.CompleteMessage(ctx, system, history)
	})
}

// StreamMessage handles one user message, invoking onDelta for each text
// fragment of the reply as it arrives
func (s *ConversationsServiceImpl) StreamMessage(
	ctx context.Context,
	userID, conversationID, text string,
	onDelta func(string),
) (*models.AssistantReply, error) {
	return s.processTurn(ctx, userID, conversationID, text, func(system string, history []clients.ChatMessage) (*clients.ChatCompletion, error) {
		return s.anthropicClient.StreamMessage(ctx, system, history, onDelta)
	})
}

func (s *ConversationsServiceImpl) processTurn(
	ctx context.Context,
	userID, conversationID, text string,
	complete func(system string, history []clients.ChatMessage) (*clients.ChatCompletion, error),
) (*models.AssistantReply, error) {
	log.Printf("📋 Starting to process message for user %s, conversation: %q", userID, conversationID)

	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}
	if text == "" {
		return nil, fmt.Errorf("message text cannot be empty")
	}

	intent := commands.Route(text)

	conversation, err := s.resolveConversation(ctx, userID, conversationID, text)
	if err != nil {
		return nil, err
	}

	userMessage := &models.ConversationMessage{
		ID:             core.NewID("msg"),
		ConversationID: conversation.ID,
		Role:           models.MessageRoleUser,
		Content:        text,
		IntentKind:     intent.Kind,
	}
	if err := s.conversationsRepo.CreateMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	completion, err := s.completeIntent(ctx, userID, conversation.ID, intent, complete)
	if err != nil {
		return nil, err
	}

	assistantMessage := &models.ConversationMessage{
		ID:             core.NewID("msg"),
		ConversationID: conversation.ID,
		Role:           models.MessageRoleAssistant,
		Content:        completion.Content,
		IntentKind:     intent.Kind,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.conversationsRepo.CreateMessage(txCtx, assistantMessage); err != nil {
			return fmt.Errorf("failed to persist assistant message: %w", err)
		}
		if err := s.conversationsRepo.TouchConversation(txCtx, conversation.ID); err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Usage accounting must never fail the chat turn
	if completion.InputTokens > 0 || completion.OutputTokens > 0 {
		if err := s.usageService.TrackUsage(ctx, userID, conversation.ID, completion.InputTokens, completion.OutputTokens); err != nil {
			log.Printf("⚠️ Failed to track usage for conversation %s: %v", conversation.ID, err)
		}
	}

	log.Printf("📋 Completed successfully - processed %s message in conversation %s", intent.Kind, conversation.ID)
	return &models.AssistantReply{
		ConversationID: conversation.ID,
		Content:        completion.Content,
		Intent:         intent.Kind,
		InputTokens:    completion.InputTokens,
		OutputTokens:   completion.OutputTokens,
	}, nil
}

// completeIntent produces the assistant's reply for the routed intent. Notes
// with content are handled locally - everything else goes to the model with
// the intent's system-prompt variant.
func (s *ConversationsServiceImpl) completeIntent(
	ctx context.Context,
	userID, conversationID string,
	intent models.CommandIntent,
	complete func(system string, history []clients.ChatMessage) (*clients.ChatCompletion, error),
) (*clients.ChatCompletion, error) {
	if intent.Kind == models.IntentKindNote && intent.Remainder != "" {
		note, err := s.notesService.CreateNote(ctx, userID, intent.Remainder)
		if err != nil {
			return nil, fmt.Errorf("failed to save note: %w", err)
		}
		return &clients.ChatCompletion{
			Content: fmt.Sprintf("Saved your note: %s", utils.TruncateString(note.Content, titleMaxLength)),
		}, nil
	}

	history, err := s.loadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	completion, err := complete(commands.SystemPrompt(intent.Kind), history)
	if err != nil {
		return nil, fmt.Errorf("failed to get assistant completion: %w", err)
	}

	return completion, nil
}

func (s *ConversationsServiceImpl) loadHistory(
	ctx context.Context,
	conversationID string,
) ([]clients.ChatMessage, error) {
	// The just-persisted user message is part of the window
	messages, err := s.conversationsRepo.GetMessagesByConversationID(ctx, conversationID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	history := make([]clients.ChatMessage, 0, len(messages))
	for _, message := range messages {
		role := clients.ChatRoleUser
		if message.Role == models.MessageRoleAssistant {
			role = clients.ChatRoleAssistant
		}
		history = append(history, clients.ChatMessage{Role: role, Content: message.Content})
	}

	return history, nil
}

func (s *ConversationsServiceImpl) resolveConversation(
	ctx context.Context,
	userID, conversationID, text string,
) (*models.Conversation, error) {
	if conversationID == "" {
		conversation := &models.Conversation{
			ID:     core.NewID("conv"),
			UserID: userID,
			Title:  utils.TruncateString(text, titleMaxLength),
		}
		if err := s.conversationsRepo.CreateConversation(ctx, conversation); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conversation, nil
	}

	maybeConversation, err := s.conversationsRepo.GetConversationByID(ctx, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	conversation, ok := maybeConversation.Get()
	if !ok {
		return nil, fmt.Errorf("%w: conversation %s", core.ErrNotFound, conversationID)
	}

	return conversation, nil
}

func (s *ConversationsServiceImpl) ListConversations(
	ctx context.Context,
	userID string,
) ([]*models.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	return s.conversationsRepo.GetConversationsByUserID(ctx, userID)
}

func (s *ConversationsServiceImpl) ListMessages(
	ctx context.Context,
	userID, conversationID string,
) ([]*models.ConversationMessage, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	maybeConversation, err := s.conversationsRepo.GetConversationByID(ctx, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if _, ok := maybeConversation.Get(); !ok {
		return nil, fmt.Errorf("%w: conversation %s", core.ErrNotFound, conversationID)
	}

	return s.conversationsRepo.GetMessagesByConversationID(ctx, conversationID, historyLimit)
}
