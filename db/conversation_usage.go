package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"pepperbackend/models"

	dbtx "pepperbackend/db/tx"
)

type PostgresConversationUsageRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for conversation_usage table
var conversationUsageColumns = []string{
	"id",
	"user_id",
	"conversation_id",
	"total_input_tokens",
	"total_output_tokens",
	"estimated_cost_usd",
	"created_at",
	"updated_at",
}

func NewPostgresConversationUsageRepository(db *sqlx.DB, schema string) *PostgresConversationUsageRepository {
	return &PostgresConversationUsageRepository{db: db, schema: schema}
}

func (r *PostgresConversationUsageRepository) CreateConversationUsage(
	ctx context.Context,
	usage *models.ConversationUsage,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(conversationUsageColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.conversation_usage (id, user_id, conversation_id, total_input_tokens, total_output_tokens, estimated_cost_usd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		usage.ID,
		usage.UserID,
		usage.ConversationID,
		usage.TotalInputTokens,
		usage.TotalOutputTokens,
		usage.EstimatedCostUSD,
	).StructScan(usage)
	if err != nil {
		return fmt.Errorf("failed to create conversation usage: %w", err)
	}

	return nil
}

func (r *PostgresConversationUsageRepository) GetConversationUsageByConversationID(
	ctx context.Context,
	conversationID string,
) (mo.Option[*models.ConversationUsage], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(conversationUsageColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.conversation_usage
		WHERE conversation_id = $1`, columnsStr, r.schema)

	var usage models.ConversationUsage
	err := db.GetContext(ctx, &usage, query, conversationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.ConversationUsage](), nil
		}
		return mo.None[*models.ConversationUsage](), fmt.Errorf("failed to get conversation usage: %w", err)
	}

	return mo.Some(&usage), nil
}

func (r *PostgresConversationUsageRepository) UpdateConversationUsage(
	ctx context.Context,
	conversationID string,
	totalInputTokens, totalOutputTokens int,
	estimatedCostUSD decimal.Decimal,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.conversation_usage
		SET total_input_tokens = $2, total_output_tokens = $3, estimated_cost_usd = $4, updated_at = NOW()
		WHERE conversation_id = $1`, r.schema)

	if _, err := db.ExecContext(ctx, query, conversationID, totalInputTokens, totalOutputTokens, estimatedCostUSD); err != nil {
		return fmt.Errorf("failed to update conversation usage: %w", err)
	}

	return nil
}
