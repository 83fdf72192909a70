package ports

import (
	"context"

	"github.com/quicknotes/notes-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create assigns the user an id and stores it. Returns domain.ErrUserExists
	// when the email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Sequence hands out never-decreasing counters per name.
type Sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}
