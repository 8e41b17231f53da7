package notes

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pepperbackend/core"
	"pepperbackend/db"
	"pepperbackend/models"
)

type NotesService struct {
	notesRepo *db.PostgresNotesRepository
}

func NewNotesService(repo *db.PostgresNotesRepository) *NotesService {
	return &NotesService{notesRepo: repo}
}

func (s *NotesService) CreateNote(ctx context.Context, userID, content string) (*models.Note, error) {
	log.Printf("📋 Starting to create note for user: %s", userID)

	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("note content cannot be empty")
	}

	note := &models.Note{
		ID:      core.NewID("n"),
		UserID:  userID,
		Content: content,
	}
	if err := s.notesRepo.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Printf("📋 Completed successfully - created note with ID: %s", note.ID)
	return note, nil
}

func (s *NotesService) ListNotes(ctx context.Context, userID string) ([]*models.Note, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	notes, err := s.notesRepo.GetNotesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}
