package handler

import (
	"time"

	"github.com/quicknotes/notes-api/internal/core/domain"
)

// messageResponse is the envelope for responses that only carry a message.
// Errors use the same shape.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required"`
}

func (registerRequest) invalidMessage() string { return "Missing required fields" }

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (loginRequest) invalidMessage() string { return "Missing email or password" }

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type userProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type authResponse struct {
	Message     string      `json:"message"`
	AccessToken string      `json:"access_token"`
	User        userSummary `json:"user"`
}

type meResponse struct {
	User userProfile `json:"user"`
}

func toUserSummary(u *domain.User) userSummary {
	return userSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toUserProfile(u *domain.User) userProfile {
	return userProfile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// --- Notes ---

type createNoteRequest struct {
	Title   string `json:"title"   validate:"required"`
	Details string `json:"details" validate:"required"`
}

func (createNoteRequest) invalidMessage() string { return "Title and details are required" }

// updateNoteRequest fields are optional; empty values keep the current ones.
type updateNoteRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

type searchNotesRequest struct {
	Title string `query:"title" validate:"required"`
}

func (searchNotesRequest) invalidMessage() string { return "Title query is required" }

// shareNoteRequest is not validated: an empty email resolves to no user.
type shareNoteRequest struct {
	Email string `json:"email"`
}

type noteResponse struct {
	Note *domain.Note `json:"note"`
}

type noteMessageResponse struct {
	Message string       `json:"message"`
	Note    *domain.Note `json:"note"`
}

type notesResponse struct {
	Notes []*domain.Note `json:"notes"`
}
