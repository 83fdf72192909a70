package ports

import (
	"context"

	"github.com/quicknotes/notes-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// TokenVerifier resolves an access token back to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
