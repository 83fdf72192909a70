package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

const userSequence = "users"

// UserRepository keeps users in registration order.
type UserRepository struct {
	mu    sync.RWMutex
	seq   ports.Sequence
	users []*domain.User
}

func NewUserRepository(seq ports.Sequence) *UserRepository {
	return &UserRepository{seq: seq}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByEmail(user.Email) != nil {
		return nil, domain.ErrUserExists
	}

	n, err := r.seq.Next(ctx, userSequence)
	if err != nil {
		return nil, fmt.Errorf("next user id: %w", err)
	}

	stored := *user
	stored.ID = fmt.Sprintf("user_id_%d", n)
	r.users = append(r.users, &stored)

	created := stored
	return &created, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.findByEmail(email)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// findByEmail must be called with r.mu held. Emails compare case-sensitively.
func (r *UserRepository) findByEmail(email string) *domain.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}
