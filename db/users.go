package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	"pepperbackend/core"
	"pepperbackend/models"

	dbtx "pepperbackend/db/tx"
)

type PostgresUsersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for users table
var usersColumns = []string{
	"id",
	"auth_provider",
	"auth_provider_id",
	"email",
	"created_at",
	"updated_at",
}

func NewPostgresUsersRepository(db *sqlx.DB, schema string) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db, schema: schema}
}

func (r *PostgresUsersRepository) GetUserByAuthProvider(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(usersColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE auth_provider = $1 AND auth_provider_id = $2`, columnsStr, r.schema)

	var user models.User
	err := db.GetContext(ctx, &user, query, authProvider, authProviderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.User](), nil
		}
		return mo.None[*models.User](), fmt.Errorf("failed to get user by auth provider: %w", err)
	}

	return mo.Some(&user), nil
}

func (r *PostgresUsersRepository) GetUserByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.User], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(usersColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE id = $1`, columnsStr, r.schema)

	var user models.User
	err := db.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.User](), nil
		}
		return mo.None[*models.User](), fmt.Errorf("failed to get user by id: %w", err)
	}

	return mo.Some(&user), nil
}

// GetOrCreateUser returns the user for the auth identity, creating the row
// on first login. The ON CONFLICT guard absorbs concurrent first logins.
func (r *PostgresUsersRepository) GetOrCreateUser(
	ctx context.Context,
	authProvider, authProviderID, email string,
) (*models.User, error) {
	maybeUser, err := r.GetUserByAuthProvider(ctx, authProvider, authProviderID)
	if err != nil {
		return nil, err
	}
	if user, ok := maybeUser.Get(); ok {
		return user, nil
	}

	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(usersColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.users (id, auth_provider, auth_provider_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (auth_provider, auth_provider_id) DO UPDATE SET updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	user := &models.User{}
	err = db.QueryRowxContext(ctx, query, core.NewID("u"), authProvider, authProviderID, email).StructScan(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
