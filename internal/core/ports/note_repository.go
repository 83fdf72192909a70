package ports

import (
	"context"

	"github.com/quicknotes/notes-api/internal/core/domain"
)

// NoteRepository holds note records. It performs no authorization; ownership
// rules are applied by the NoteService.
type NoteRepository interface {
	// Create assigns an id and stores the note. Title and details must be non-empty.
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// ListVisibleTo returns notes owned by or shared with userID, in store order.
	ListVisibleTo(ctx context.Context, userID string) ([]*domain.Note, error)
	// SearchByTitle narrows ListVisibleTo to titles containing query (case-insensitive).
	SearchByTitle(ctx context.Context, userID, query string) ([]*domain.Note, error)
	// Update replaces title and details when non-empty and always refreshes updated_at.
	Update(ctx context.Context, id, title, details string) (*domain.Note, error)
	Delete(ctx context.Context, id string) error
	AddShare(ctx context.Context, id, userID string) error
	ToggleBookmark(ctx context.Context, id, userID string) (domain.BookmarkState, error)
}
