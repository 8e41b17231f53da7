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

type PostgresOAuthSessionsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for oauth_sessions table
var oauthSessionsColumns = []string{
	"id",
	"user_id",
	"provider",
	"device_code",
	"user_code",
	"verification_uri",
	"interval_seconds",
	"expires_at",
	"status",
	"created_at",
	"updated_at",
}

func NewPostgresOAuthSessionsRepository(db *sqlx.DB, schema string) *PostgresOAuthSessionsRepository {
	return &PostgresOAuthSessionsRepository{db: db, schema: schema}
}

func (r *PostgresOAuthSessionsRepository) CreateOAuthSession(
	ctx context.Context,
	session *models.OAuthSession,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	insertColumns := []string{
		"id",
		"user_id",
		"provider",
		"device_code",
		"user_code",
		"verification_uri",
		"interval_seconds",
		"expires_at",
		"status",
	}
	columnsStr := strings.Join(insertColumns, ", ")
	returningStr := strings.Join(oauthSessionsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.oauth_sessions (%s, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.Provider,
		session.DeviceCode,
		session.UserCode,
		session.VerificationURI,
		session.IntervalSeconds,
		session.ExpiresAt,
		session.Status,
	).StructScan(session)
	if err != nil {
		return fmt.Errorf("failed to create oauth session: %w", err)
	}

	return nil
}

func (r *PostgresOAuthSessionsRepository) GetPendingSession(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) (mo.Option[*models.OAuthSession], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(oauthSessionsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.oauth_sessions
		WHERE user_id = $1 AND provider = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, columnsStr, r.schema)

	var session models.OAuthSession
	err := db.GetContext(ctx, &session, query, userID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.OAuthSession](), nil
		}
		return mo.None[*models.OAuthSession](), fmt.Errorf("failed to get pending oauth session: %w", err)
	}

	return mo.Some(&session), nil
}

// UpdateSessionStatus moves a session out of pending. The status guard makes
// concurrent polls a benign race - only one caller observes the transition.
func (r *PostgresOAuthSessionsRepository) UpdateSessionStatus(
	ctx context.Context,
	sessionID string,
	status models.OAuthSessionStatus,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.oauth_sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, r.schema)

	result, err := db.ExecContext(ctx, query, sessionID, status)
	if err != nil {
		return false, fmt.Errorf("failed to update oauth session status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UpdateSessionInterval stores the provider's slow_down adjusted interval
func (r *PostgresOAuthSessionsRepository) UpdateSessionInterval(
	ctx context.Context,
	sessionID string,
	intervalSeconds int,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.oauth_sessions
		SET interval_seconds = $2, updated_at = NOW()
		WHERE id = $1`, r.schema)

	if _, err := db.ExecContext(ctx, query, sessionID, intervalSeconds); err != nil {
		return fmt.Errorf("failed to update oauth session interval: %w", err)
	}

	return nil
}

// ExpirePendingSessions invalidates any pending session for the (user, provider)
// pair. Called before starting a new flow so at most one session is pending.
func (r *PostgresOAuthSessionsRepository) ExpirePendingSessions(
	ctx context.Context,
	userID string,
	provider models.CalendarProvider,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.oauth_sessions
		SET status = 'expired', updated_at = NOW()
		WHERE user_id = $1 AND provider = $2 AND status = 'pending'`, r.schema)

	if _, err := db.ExecContext(ctx, query, userID, provider); err != nil {
		return fmt.Errorf("failed to expire pending oauth sessions: %w", err)
	}

	return nil
}
