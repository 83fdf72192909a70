package ports

import (
	"context"

	"github.com/quicknotes/notes-api/internal/core/domain"
)

// UpdateNoteInput carries the optional replacement fields for a note.
// Empty strings keep the current value.
type UpdateNoteInput struct {
	Title   string
	Details string
}

// NoteService defines use-case operations for notes, including ownership policy.
type NoteService interface {
	Create(ctx context.Context, ownerID, title, details string) (*domain.Note, error)
	Get(ctx context.Context, id string) (*domain.Note, error)
	ListVisible(ctx context.Context, userID string) ([]*domain.Note, error)
	Search(ctx context.Context, userID, title string) ([]*domain.Note, error)
	Update(ctx context.Context, callerID, id string, input UpdateNoteInput) (*domain.Note, error)
	Delete(ctx context.Context, callerID, id string) error
	Share(ctx context.Context, callerID, id, email string) error
	ToggleBookmark(ctx context.Context, callerID, id string) (domain.BookmarkState, error)
}
