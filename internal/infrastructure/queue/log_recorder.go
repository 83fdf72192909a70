package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quicknotes/notes-api/internal/core/ports"
)

// LogRecorder writes note activity to the structured log. It is the recorder
// used with the in-memory store.
type LogRecorder struct {
	log zerolog.Logger
}

func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(_ context.Context, a ports.NoteActivity) error {
	ev := r.log.Info().
		Str("note_id", a.NoteID).
		Str("user_id", a.UserID).
		Str("action", a.Action).
		Time("at", a.At)
	if a.Target != "" {
		ev = ev.Str("target", a.Target)
	}
	ev.Msg("note activity")
	return nil
}
