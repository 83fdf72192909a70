package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "user_id"

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID string
}

// Authenticate resolves the Authorization header value into an Identity.
// A missing header or token yields domain.ErrUnauthenticated; a token that
// fails verification yields domain.ErrInvalidToken.
func Authenticate(header string, verifier ports.TokenVerifier) (Identity, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || token == "" || !strings.EqualFold(scheme, "bearer") {
		return Identity{}, domain.ErrUnauthenticated
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		return Identity{}, domain.ErrInvalidToken
	}
	return Identity{UserID: userID}, nil
}

// Auth rejects requests without a valid bearer token and stores the caller's
// id under UserIDKey.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := Authenticate(c.Request().Header.Get(echo.HeaderAuthorization), verifier)
			if err != nil {
				return err
			}
			c.Set(UserIDKey, id.UserID)
			return next(c)
		}
	}
}
