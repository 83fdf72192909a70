package ports

import "time"

// Activity actions recorded for notes.
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeleted      = "deleted"
	ActionShared       = "shared"
	ActionBookmarked   = "bookmarked"
	ActionUnbookmarked = "unbookmarked"
)

// NoteActivity is a single mutation performed on a note.
type NoteActivity struct {
	NoteID string
	UserID string
	Action string
	Target string // optional: the user a note was shared with
	At     time.Time
}

// ActivityPublisher accepts activity for asynchronous recording.
type ActivityPublisher interface {
	Publish(activity NoteActivity)
}
