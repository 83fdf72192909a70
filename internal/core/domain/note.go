package domain

import (
	"strings"
	"time"
)

// BookmarkState is the result of toggling a bookmark.
type BookmarkState string

const (
	Bookmarked   BookmarkState = "bookmarked"
	Unbookmarked BookmarkState = "unbookmarked"
)

// Note is the core aggregate. SharedWith and BookmarkedBy are sets of user ids
// kept as ordered slices without duplicates.
type Note struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Details      string    `json:"details" bson:"details"`
	OwnerID      string    `json:"owner_id" bson:"owner_id"`
	SharedWith   []string  `json:"shared_with" bson:"shared_with"`
	BookmarkedBy []string  `json:"bookmarked_by" bson:"bookmarked_by"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// VisibleTo reports whether userID owns the note or appears in its share list.
func (n *Note) VisibleTo(userID string) bool {
	return n.OwnerID == userID || contains(n.SharedWith, userID)
}

// TitleContains reports whether the title holds query, ignoring case.
func (n *Note) TitleContains(query string) bool {
	return strings.Contains(strings.ToLower(n.Title), strings.ToLower(query))
}

// IsBookmarkedBy reports whether userID has bookmarked the note.
func (n *Note) IsBookmarkedBy(userID string) bool {
	return contains(n.BookmarkedBy, userID)
}

// ShareWith adds userID to the share list. It returns false when the user was
// already present.
func (n *Note) ShareWith(userID string) bool {
	if contains(n.SharedWith, userID) {
		return false
	}
	n.SharedWith = append(n.SharedWith, userID)
	return true
}

// ToggleBookmark flips userID's bookmark and reports the resulting state.
func (n *Note) ToggleBookmark(userID string) BookmarkState {
	for i, id := range n.BookmarkedBy {
		if id == userID {
			n.BookmarkedBy = append(n.BookmarkedBy[:i:i], n.BookmarkedBy[i+1:]...)
			return Unbookmarked
		}
	}
	n.BookmarkedBy = append(n.BookmarkedBy, userID)
	return Bookmarked
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	c.SharedWith = append(make([]string, 0, len(n.SharedWith)), n.SharedWith...)
	c.BookmarkedBy = append(make([]string, 0, len(n.BookmarkedBy)), n.BookmarkedBy...)
	return &c
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
