package service

import (
	"github.com/quicknotes/notes-api/internal/api/metrics"
	"github.com/quicknotes/notes-api/internal/core/domain"
)

// Policy actions. The action name is part of the client-facing 403 message.
const (
	actionUpdate = "update"
	actionDelete = "delete"
	actionShare  = "share"
)

// notePolicy holds the ownership rules for note mutations.
//
// Reading a single note and toggling a bookmark are deliberately not gated
// here: any caller may do both for any note id.
type notePolicy struct{}

// CanModify allows update, delete and share only for the note's owner.
func (notePolicy) CanModify(note *domain.Note, callerID, action string) error {
	if note.OwnerID != callerID {
		metrics.NotePolicyDenialsTotal.WithLabelValues(action).Inc()
		return &domain.PolicyError{Action: action}
	}
	return nil
}
