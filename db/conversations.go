package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	"pepperbackend/models"

	dbtx "pepperbackend/db/tx"
)

type PostgresConversationsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for conversations table
var conversationsColumns = []string{
	"id",
	"user_id",
	"title",
	"created_at",
	"updated_at",
}

// Column names for conversation_messages table
var conversationMessagesColumns = []string{
	"id",
	"conversation_id",
	"role",
	"content",
	"intent_kind",
	"created_at",
}

func NewPostgresConversationsRepository(db *sqlx.DB, schema string) *PostgresConversationsRepository {
	return &PostgresConversationsRepository{db: db, schema: schema}
}

func (r *PostgresConversationsRepository) CreateConversation(
	ctx context.Context,
	conversation *models.Conversation,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(conversationsColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(ctx, query, conversation.ID, conversation.UserID, conversation.Title).
		StructScan(conversation)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *PostgresConversationsRepository) GetConversationByID(
	ctx context.Context,
	userID, conversationID string,
) (mo.Option[*models.Conversation], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(conversationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.conversations
		WHERE id = $1 AND user_id = $2`, columnsStr, r.schema)

	var conversation models.Conversation
	err := db.GetContext(ctx, &conversation, query, conversationID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Conversation](), nil
		}
		return mo.None[*models.Conversation](), fmt.Errorf("failed to get conversation: %w", err)
	}

	return mo.Some(&conversation), nil
}

func (r *PostgresConversationsRepository) GetConversationsByUserID(
	ctx context.Context,
	userID string,
) ([]*models.Conversation, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(conversationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC`, columnsStr, r.schema)

	conversations := []*models.Conversation{}
	err := db.SelectContext(ctx, &conversations, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}

	return conversations, nil
}

func (r *PostgresConversationsRepository) CreateMessage(
	ctx context.Context,
	message *models.ConversationMessage,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(conversationMessagesColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.conversation_messages (id, conversation_id, role, content, intent_kind, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		message.ID,
		message.ConversationID,
		message.Role,
		message.Content,
		message.IntentKind,
	).StructScan(message)
	if err != nil {
		return fmt.Errorf("failed to create conversation message: %w", err)
	}

	return nil
}

func (r *PostgresConversationsRepository) GetMessagesByConversationID(
	ctx context.Context,
	conversationID string,
	limit int,
) ([]*models.ConversationMessage, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(conversationMessagesColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s
			FROM %s.conversation_messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`, columnsStr, columnsStr, r.schema)

	messages := []*models.ConversationMessage{}
	err := db.SelectContext(ctx, &messages, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation messages: %w", err)
	}

	return messages, nil
}

// TouchConversation bumps updated_at so list ordering follows activity
func (r *PostgresConversationsRepository) TouchConversation(
	ctx context.Context,
	conversationID string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.conversations
		SET updated_at = NOW()
		WHERE id = $1`, r.schema)

	if _, err := db.ExecContext(ctx, query, conversationID); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return nil
}
