package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicknotes/notes-api/internal/auth"
	"github.com/quicknotes/notes-api/internal/core/service"
	"github.com/quicknotes/notes-api/internal/infrastructure/db/memory"
)

type testServer struct {
	t      *testing.T
	e      *echo.Echo
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	seq := memory.NewSequence()
	users := memory.NewUserRepository(seq)
	notes := memory.NewNoteRepository(seq)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	registry := prometheus.NewRegistry()

	e := NewRouter(Deps{
		AuthService: service.NewAuthService(users, tokens, zerolog.Nop()),
		NoteService: service.NewNoteService(notes, users, nil, zerolog.Nop()),
		Verifier:    tokens,
		Logger:      zerolog.Nop(),
		Registerer:  registry,
		Gatherer:    registry,
	})
	return &testServer{t: t, e: e, tokens: tokens}
}

// do sends a request and decodes the JSON response body.
func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	}
	return rec.Code, resp
}

// register creates a user and returns its access token and id.
func (s *testServer) register(email, name string) (string, string) {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/api/auth/register", "",
		`{"email":"`+email+`","password":"secret1","name":"`+name+`"}`)
	require.Equal(s.t, http.StatusCreated, code, "register %s: %v", email, resp)
	user := resp["user"].(map[string]any)
	return resp["access_token"].(string), user["id"].(string)
}

func (s *testServer) createNote(token, title, details string) string {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/api/notes", token, `{"title":"`+title+`","details":"`+details+`"}`)
	require.Equal(s.t, http.StatusCreated, code, "create note: %v", resp)
	return resp["note"].(map[string]any)["id"].(string)
}

func noteIDs(resp map[string]any) []string {
	list, _ := resp["notes"].([]any)
	ids := make([]string, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.(map[string]any)["id"].(string))
	}
	return ids
}

func TestRegisterAndMe(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodPost, "/api/auth/register", "", `{"email":"a@x.com","password":"secret1","name":"A"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User registered successfully", resp["message"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "user_id_1", user["id"])

	token := resp["access_token"].(string)
	userID, err := s.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_id_1", userID)

	code, resp = s.do(http.MethodGet, "/api/auth/me", token, "")
	require.Equal(t, http.StatusOK, code)
	me := resp["user"].(map[string]any)
	assert.Equal(t, "a@x.com", me["email"])
	assert.NotEmpty(t, me["created_at"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "password_hash")
}

func TestRegisterValidationOrder(t *testing.T) {
	s := newTestServer(t)
	s.register("b@x.com", "B")

	cases := []struct {
		body string
		msg  string
	}{
		{`{"email":"c@x.com","password":"secret1"}`, "Missing required fields"},
		{`{"email":"b@x.com","password":"abc","name":"Other"}`, "Email already registered"},
		{`{"email":"c@x.com","password":"abc","name":"C"}`, "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		code, resp := s.do(http.MethodPost, "/api/auth/register", "", tc.body)
		assert.Equal(t, http.StatusBadRequest, code, tc.body)
		assert.Equal(t, tc.msg, resp["message"], tc.body)
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("c@x.com", "C")

	code, resp := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"c@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", resp["message"])
	assert.NotEmpty(t, resp["access_token"])

	code, resp = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"c@x.com","password":"wrong!"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", resp["message"])

	code, resp = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"c@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing email or password", resp["message"])
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodGet, "/api/notes", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", resp["message"])

	code, resp = s.do(http.MethodGet, "/api/notes", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", resp["message"])

	// A well-signed token for a user that does not exist.
	ghost, err := s.tokens.Issue("user_id_404")
	require.NoError(t, err)
	code, resp = s.do(http.MethodGet, "/api/auth/me", ghost, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", resp["message"])
}

func TestNoteVisibilityAndSharing(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")
	noteID := s.createNote(alice, "Groceries", "milk")

	// Sharing with an unregistered email.
	code, resp := s.do(http.MethodPost, "/api/notes/"+noteID+"/share", alice, `{"email":"bob@x.com"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", resp["message"])

	bob, bobID := s.register("bob@x.com", "Bob")

	_, resp = s.do(http.MethodGet, "/api/notes", bob, "")
	assert.Empty(t, noteIDs(resp))

	code, resp = s.do(http.MethodPost, "/api/notes/"+noteID+"/share", alice, `{"email":"bob@x.com"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Note shared successfully", resp["message"])
	s.do(http.MethodPost, "/api/notes/"+noteID+"/share", alice, `{"email":"bob@x.com"}`)

	_, resp = s.do(http.MethodGet, "/api/notes", bob, "")
	assert.Equal(t, []string{noteID}, noteIDs(resp))

	_, resp = s.do(http.MethodGet, "/api/notes/"+noteID, "", "")
	assert.Equal(t, []any{bobID}, resp["note"].(map[string]any)["shared_with"])

	// Read access does not grant update, delete or share.
	code, resp = s.do(http.MethodPut, "/api/notes/"+noteID, bob, `{"title":"mine"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not allowed to update this note", resp["message"])

	code, resp = s.do(http.MethodDelete, "/api/notes/"+noteID, bob, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not allowed to delete this note", resp["message"])

	code, resp = s.do(http.MethodPost, "/api/notes/"+noteID+"/share", bob, `{"email":"alice@x.com"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not allowed to share this note", resp["message"])
}

func TestNoteReadIsPublic(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")
	noteID := s.createNote(alice, "Private", "x")

	code, resp := s.do(http.MethodGet, "/api/notes/"+noteID, "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Private", resp["note"].(map[string]any)["title"])

	code, resp = s.do(http.MethodGet, "/api/notes/note_id_999", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", resp["message"])
}

func TestNoteUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")
	noteID := s.createNote(alice, "Groceries", "milk")

	code, resp := s.do(http.MethodPut, "/api/notes/"+noteID, alice, `{"details":"milk, eggs"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Note updated successfully", resp["message"])
	note := resp["note"].(map[string]any)
	assert.Equal(t, "Groceries", note["title"])
	assert.Equal(t, "milk, eggs", note["details"])

	code, _ = s.do(http.MethodPut, "/api/notes/"+noteID, alice, `{}`)
	assert.Equal(t, http.StatusOK, code)

	code, resp = s.do(http.MethodDelete, "/api/notes/"+noteID, alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Note deleted successfully", resp["message"])

	code, _ = s.do(http.MethodDelete, "/api/notes/"+noteID, alice, "")
	assert.Equal(t, http.StatusNotFound, code)

	// Ids are never reused after a delete.
	next := s.createNote(alice, "Again", "x")
	assert.NotEqual(t, noteID, next)
}

func TestCreateNoteValidation(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")

	code, resp := s.do(http.MethodPost, "/api/notes", alice, `{"title":"only"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Title and details are required", resp["message"])

	code, resp = s.do(http.MethodPost, "/api/notes", alice, `not-json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid payload", resp["message"])

	// Without a Content-Type the body cannot be bound at all.
	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"title":"T","details":"D"}`))
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+alice)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid payload"}`, rec.Body.String())
}

func TestCreateNoteForUnknownUser(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@x.com", "Alice")

	// Signed with the server secret, but user_id_42 was never registered.
	ghost, err := s.tokens.Issue("user_id_42")
	require.NoError(t, err)

	code, resp := s.do(http.MethodPost, "/api/notes", ghost, `{"title":"T","details":"D"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", resp["message"])

	bob, _ := s.register("bob@x.com", "Bob")
	id := s.createNote(bob, "T", "D")
	assert.Equal(t, "note_id_1", id, "the rejected create must not consume a note id")
}

func TestTrailingSlashIsIgnored(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")
	id := s.createNote(alice, "T", "D")

	code, resp := s.do(http.MethodGet, "/api/notes/", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{id}, noteIDs(resp))
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")
	bob, _ := s.register("bob@x.com", "Bob")
	groceries := s.createNote(alice, "Groceries", "milk")
	s.createNote(alice, "Work", "deploy")
	s.createNote(bob, "Bob's groceries", "eggs")

	code, resp := s.do(http.MethodGet, "/api/notes/search?title=GROC", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{groceries}, noteIDs(resp))

	code, resp = s.do(http.MethodGet, "/api/notes/search?title=zzz", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, noteIDs(resp))
	assert.NotNil(t, resp["notes"], "no matches must render an empty array")

	code, resp = s.do(http.MethodGet, "/api/notes/search", alice, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Title query is required", resp["message"])
}

func TestBookmarkToggle(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com", "Alice")
	bob, bobID := s.register("bob@x.com", "Bob")
	noteID := s.createNote(alice, "Groceries", "milk")

	// Any authenticated user may bookmark any note.
	_, resp := s.do(http.MethodGet, "/api/notes/"+noteID+"/bookmark", bob, "")
	assert.Equal(t, "Note bookmarked", resp["message"])

	_, resp = s.do(http.MethodGet, "/api/notes/"+noteID, "", "")
	assert.Equal(t, []any{bobID}, resp["note"].(map[string]any)["bookmarked_by"])

	_, resp = s.do(http.MethodGet, "/api/notes/"+noteID+"/bookmark", bob, "")
	assert.Equal(t, "Note unbookmarked", resp["message"])

	code, resp := s.do(http.MethodGet, "/api/notes/note_id_999/bookmark", bob, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", resp["message"])
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])

	code, _ = s.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes_api_requests_total")

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/notes/{id}/share")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}
