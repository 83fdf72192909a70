package ports

import "context"

// ActivityRecorder persists note activity to an audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, activity NoteActivity) error
}
