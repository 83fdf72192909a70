package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quicknotes/notes-api/internal/api/metrics"
	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

type NoteService struct {
	notes    ports.NoteRepository
	users    ports.UserRepository
	activity ports.ActivityPublisher
	policy   notePolicy
	logger   zerolog.Logger
}

// NewNoteService wires the note use cases. activity may be nil, in which case
// no activity is published.
func NewNoteService(
	notes ports.NoteRepository,
	users ports.UserRepository,
	activity ports.ActivityPublisher,
	logger zerolog.Logger,
) *NoteService {
	return &NoteService{notes: notes, users: users, activity: activity, logger: logger}
}

// Create stores a new note owned by ownerID. The owner must still exist: a
// token for a user that is gone is reported as domain.ErrInvalidToken.
func (s *NoteService) Create(ctx context.Context, ownerID, title, details string) (*domain.Note, error) {
	if title == "" || details == "" {
		return nil, domain.NewValidationError("Title and details are required")
	}

	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("create note: %w", err)
	}

	now := time.Now().UTC()
	note, err := s.notes.Create(ctx, &domain.Note{
		Title:        title,
		Details:      details,
		OwnerID:      ownerID,
		SharedWith:   []string{},
		BookmarkedBy: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("note_id", note.ID).Str("owner_id", ownerID).Msg("note created")
	s.record(note.ID, ownerID, ports.ActionCreated, "")
	return note, nil
}

// Get returns any note by id. No visibility check is applied.
func (s *NoteService) Get(ctx context.Context, id string) (*domain.Note, error) {
	return s.notes.FindByID(ctx, id)
}

func (s *NoteService) ListVisible(ctx context.Context, userID string) ([]*domain.Note, error) {
	return s.notes.ListVisibleTo(ctx, userID)
}

func (s *NoteService) Search(ctx context.Context, userID, title string) ([]*domain.Note, error) {
	if title == "" {
		return nil, domain.NewValidationError("Title query is required")
	}
	return s.notes.SearchByTitle(ctx, userID, title)
}

// Update replaces the non-empty fields of a note owned by callerID.
func (s *NoteService) Update(ctx context.Context, callerID, id string, input ports.UpdateNoteInput) (*domain.Note, error) {
	if err := s.authorize(ctx, callerID, id, actionUpdate); err != nil {
		return nil, err
	}

	note, err := s.notes.Update(ctx, id, input.Title, input.Details)
	if err != nil {
		return nil, err
	}

	s.record(id, callerID, ports.ActionUpdated, "")
	return note, nil
}

// Delete removes a note owned by callerID.
func (s *NoteService) Delete(ctx context.Context, callerID, id string) error {
	if err := s.authorize(ctx, callerID, id, actionDelete); err != nil {
		return err
	}

	if err := s.notes.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("note_id", id).Msg("note deleted")
	s.record(id, callerID, ports.ActionDeleted, "")
	return nil
}

// Share grants read access on a note owned by callerID to the user registered
// under email. Sharing twice with the same user is a no-op.
func (s *NoteService) Share(ctx context.Context, callerID, id, email string) error {
	if err := s.authorize(ctx, callerID, id, actionShare); err != nil {
		return err
	}

	target, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.notes.AddShare(ctx, id, target.ID); err != nil {
		return err
	}

	s.record(id, callerID, ports.ActionShared, target.ID)
	return nil
}

// ToggleBookmark flips callerID's bookmark on any existing note.
func (s *NoteService) ToggleBookmark(ctx context.Context, callerID, id string) (domain.BookmarkState, error) {
	state, err := s.notes.ToggleBookmark(ctx, id, callerID)
	if err != nil {
		return "", err
	}

	action := ports.ActionBookmarked
	if state == domain.Unbookmarked {
		action = ports.ActionUnbookmarked
	}
	s.record(id, callerID, action, "")
	return state, nil
}

// authorize loads the note and applies the ownership policy for action.
func (s *NoteService) authorize(ctx context.Context, callerID, id, action string) error {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return err
		}
		return fmt.Errorf("%s note: %w", action, err)
	}
	return s.policy.CanModify(note, callerID, action)
}

func (s *NoteService) record(noteID, userID, action, target string) {
	metrics.NoteOperationsTotal.WithLabelValues(action).Inc()
	if s.activity == nil {
		return
	}
	s.activity.Publish(ports.NoteActivity{
		NoteID: noteID,
		UserID: userID,
		Action: action,
		Target: target,
		At:     time.Now().UTC(),
	})
}
