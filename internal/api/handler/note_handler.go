package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

// NoteHandler handles HTTP requests for note operations.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// Create handles POST /api/notes.
//
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createNoteRequest  true  "Note content"
// @Success      201   {object}  noteMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /api/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.service.Create(c.Request().Context(), userID, req.Title, req.Details)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, noteMessageResponse{Message: "Note created successfully", Note: note})
}

// List handles GET /api/notes.
//
// @Summary      List notes owned by or shared with the caller
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notesResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	notes, err := h.service.ListVisible(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notesResponse{Notes: notes})
}

// Get handles GET /api/notes/:id. The route is public and applies no
// visibility check.
//
// @Summary      Get a note by id
// @Tags         notes
// @Produce      json
// @Param        id   path      string  true  "Note id (e.g. note_id_1)"
// @Success      200  {object}  noteResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/notes/{id} [get]
func (h *NoteHandler) Get(c echo.Context) error {
	note, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, noteResponse{Note: note})
}

// Update handles PUT /api/notes/:id.
//
// @Summary      Update a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Note id"
// @Param        body  body      updateNoteRequest  true  "Fields to replace"
// @Success      200   {object}  noteMessageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/notes/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), ports.UpdateNoteInput{
		Title:   req.Title,
		Details: req.Details,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, noteMessageResponse{Message: "Note updated successfully", Note: note})
}

// Delete handles DELETE /api/notes/:id.
//
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Note deleted successfully"})
}

// Search handles GET /api/notes/search?title=.
//
// @Summary      Search visible notes by title
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        title  query     string  true  "Case-insensitive title fragment"
// @Success      200    {object}  notesResponse
// @Failure      400    {object}  messageResponse
// @Failure      401    {object}  messageResponse
// @Router       /api/notes/search [get]
func (h *NoteHandler) Search(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req searchNotesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	notes, err := h.service.Search(c.Request().Context(), userID, req.Title)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notesResponse{Notes: notes})
}

// Share handles POST /api/notes/:id/share.
//
// @Summary      Share a note with another user
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Note id"
// @Param        body  body      shareNoteRequest  true  "Recipient"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/notes/{id}/share [post]
func (h *NoteHandler) Share(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req shareNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.Share(c.Request().Context(), userID, c.Param("id"), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Note shared successfully"})
}

// Bookmark handles GET /api/notes/:id/bookmark and toggles the caller's bookmark.
//
// @Summary      Toggle a bookmark
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/notes/{id}/bookmark [get]
func (h *NoteHandler) Bookmark(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	state, err := h.service.ToggleBookmark(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	msg := "Note bookmarked"
	if state == domain.Unbookmarked {
		msg = "Note unbookmarked"
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
