package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pepperbackend/models"

	dbtx "pepperbackend/db/tx"
)

type PostgresNotesRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for notes table
var notesColumns = []string{
	"id",
	"user_id",
	"content",
	"created_at",
}

func NewPostgresNotesRepository(db *sqlx.DB, schema string) *PostgresNotesRepository {
	return &PostgresNotesRepository{db: db, schema: schema}
}

func (r *PostgresNotesRepository) CreateNote(ctx context.Context, note *models.Note) error {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(notesColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.notes (id, user_id, content, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(ctx, query, note.ID, note.UserID, note.Content).StructScan(note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *PostgresNotesRepository) GetNotesByUserID(ctx context.Context, userID string) ([]*models.Note, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(notesColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.notes
		WHERE user_id = $1
		ORDER BY created_at DESC`, columnsStr, r.schema)

	notes := []*models.Note{}
	err := db.SelectContext(ctx, &notes, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}

	return notes, nil
}
