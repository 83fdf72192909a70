package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quicknotes/notes-api/internal/core/ports"
)

// ActivityRepository implements ports.ActivityRecorder on the note_activity
// audit collection.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

// Record persists a single activity entry.
func (r *ActivityRepository) Record(ctx context.Context, a ports.NoteActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"note_id":     a.NoteID,
		"user_id":     a.UserID,
		"action":      a.Action,
		"at":          a.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if a.Target != "" {
		doc["target"] = a.Target
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}
