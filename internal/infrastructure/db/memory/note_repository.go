package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

const noteSequence = "notes"

// NoteRepository keeps notes in creation order behind a single RWMutex.
// Every returned note is a deep copy.
type NoteRepository struct {
	mu    sync.RWMutex
	seq   ports.Sequence
	notes []*domain.Note
	now   func() time.Time
}

func NewNoteRepository(seq ports.Sequence) *NoteRepository {
	return &NoteRepository{seq: seq, now: func() time.Time { return time.Now().UTC() }}
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note.Title == "" || note.Details == "" {
		return nil, domain.NewValidationError("Title and details are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.seq.Next(ctx, noteSequence)
	if err != nil {
		return nil, fmt.Errorf("next note id: %w", err)
	}

	stored := note.Clone()
	stored.ID = fmt.Sprintf("note_id_%d", n)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	r.notes = append(r.notes, stored)
	return stored.Clone(), nil
}

func (r *NoteRepository) FindByID(_ context.Context, id string) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNoteNotFound
	}
	return r.notes[i].Clone(), nil
}

func (r *NoteRepository) ListVisibleTo(_ context.Context, userID string) ([]*domain.Note, error) {
	return r.filter(func(n *domain.Note) bool { return n.VisibleTo(userID) }), nil
}

func (r *NoteRepository) SearchByTitle(_ context.Context, userID, query string) ([]*domain.Note, error) {
	if query == "" {
		return nil, domain.NewValidationError("Title query is required")
	}
	return r.filter(func(n *domain.Note) bool {
		return n.VisibleTo(userID) && n.TitleContains(query)
	}), nil
}

func (r *NoteRepository) Update(_ context.Context, id, title, details string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNoteNotFound
	}

	n := r.notes[i]
	if title != "" {
		n.Title = title
	}
	if details != "" {
		n.Details = details
	}
	n.UpdatedAt = r.now()
	return n.Clone(), nil
}

func (r *NoteRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNoteNotFound
	}
	r.notes = append(r.notes[:i], r.notes[i+1:]...)
	return nil
}

func (r *NoteRepository) AddShare(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNoteNotFound
	}
	r.notes[i].ShareWith(userID)
	return nil
}

func (r *NoteRepository) ToggleBookmark(_ context.Context, id, userID string) (domain.BookmarkState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return "", domain.ErrNoteNotFound
	}
	return r.notes[i].ToggleBookmark(userID), nil
}

// indexOf must be called with r.mu held.
func (r *NoteRepository) indexOf(id string) int {
	for i, n := range r.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (r *NoteRepository) filter(keep func(*domain.Note) bool) []*domain.Note {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Note, 0)
	for _, n := range r.notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}
