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

type PostgresProviderTokensRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for provider_tokens table
var providerTokensColumns = []string{
	"id",
	"user_id",
	"provider",
	"access_token",
	"refresh_token",
	"expires_at",
	"created_at",
	"updated_at",
}

func NewPostgresProviderTokensRepository(db *sqlx.DB, schema string) *PostgresProviderTokensRepository {
	return &PostgresProviderTokensRepository{db: db, schema: schema}
}

// UpsertProviderToken inserts or replaces the token row for the token's
// (user, provider) pair. The unique index keeps the row count at one per
// pair, so a duplicate successful exchange is a benign overwrite.
func (r *PostgresProviderTokensRepository) UpsertProviderToken(
	ctx context.Context,
	token *models.ProviderToken,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(providerTokensColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.provider_tokens (id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.Provider,
		token.AccessToken,
		token.RefreshToken,
		token.ExpiresAt,
	).StructScan(token)
	if err != nil {
		return fmt.Errorf("failed to upsert provider token: %w", err)
	}

	return nil
}

func (r *PostgresProviderTokensRepository) GetProviderToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (mo.Option[*models.ProviderToken], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(providerTokensColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.provider_tokens
		WHERE user_id = $1 AND provider = $2`, columnsStr, r.schema)

	var token models.ProviderToken
	err := db.GetContext(ctx, &token, query, userID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.ProviderToken](), nil
		}
		return mo.None[*models.ProviderToken](), fmt.Errorf("failed to get provider token: %w", err)
	}

	return mo.Some(&token), nil
}

func (r *PostgresProviderTokensRepository) ListProviderTokens(
	ctx context.Context,
	userID string,
) ([]*models.ProviderToken, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(providerTokensColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.provider_tokens
		WHERE user_id = $1
		ORDER BY provider ASC`, columnsStr, r.schema)

	tokens := []*models.ProviderToken{}
	err := db.SelectContext(ctx, &tokens, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider tokens: %w", err)
	}

	return tokens, nil
}

// DeleteProviderToken removes the token row if it exists. Deleting a row
// that is already gone is not an error - disconnect is idempotent.
func (r *PostgresProviderTokensRepository) DeleteProviderToken(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		DELETE FROM %s.provider_tokens
		WHERE user_id = $1 AND provider = $2`, r.schema)

	if _, err := db.ExecContext(ctx, query, userID, provider); err != nil {
		return fmt.Errorf("failed to delete provider token: %w", err)
	}

	return nil
}
