package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

const noteSequence = "notes"

// noteDocument embeds the note with the sequence number that fixes store order.
type noteDocument struct {
	domain.Note `bson:",inline"`
	Seq         int64 `bson:"seq"`
}

// NoteRepository implements ports.NoteRepository on the notes collection.
// Each mutation is a single-document atomic update.
type NoteRepository struct {
	col *mongo.Collection
	seq ports.Sequence
	now func() time.Time
}

func NewNoteRepository(db *mongo.Database, seq ports.Sequence) *NoteRepository {
	return &NoteRepository{
		col: db.Collection(collectionNotes),
		seq: seq,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note.Title == "" || note.Details == "" {
		return nil, domain.NewValidationError("Title and details are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.seq.Next(ctx, noteSequence)
	if err != nil {
		return nil, fmt.Errorf("next note id: %w", err)
	}

	doc := noteDocument{Note: *note.Clone(), Seq: n}
	doc.ID = fmt.Sprintf("note_id_%d", n)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return doc.Note.Clone(), nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc noteDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return doc.Note.Clone(), nil
}

func (r *NoteRepository) ListVisibleTo(ctx context.Context, userID string) ([]*domain.Note, error) {
	return r.find(ctx, visibleTo(userID))
}

func (r *NoteRepository) SearchByTitle(ctx context.Context, userID, query string) ([]*domain.Note, error) {
	if query == "" {
		return nil, domain.NewValidationError("Title query is required")
	}

	filter := visibleTo(userID)
	filter["title"] = bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	return r.find(ctx, filter)
}

func (r *NoteRepository) Update(ctx context.Context, id, title, details string) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": r.now()}
	if title != "" {
		set["title"] = title
	}
	if details != "" {
		set["details"] = details
	}

	var doc noteDocument
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return doc.Note.Clone(), nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) AddShare(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"shared_with": userID}})
	if err != nil {
		return fmt.Errorf("share note: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// ToggleBookmark first tries to pull userID; if nothing was pulled it adds it.
func (r *NoteRepository) ToggleBookmark(ctx context.Context, id, userID string) (domain.BookmarkState, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "bookmarked_by": userID},
		bson.M{"$pull": bson.M{"bookmarked_by": userID}},
	)
	if err != nil {
		return "", fmt.Errorf("unbookmark note: %w", err)
	}
	if res.ModifiedCount > 0 {
		return domain.Unbookmarked, nil
	}

	res, err = r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"bookmarked_by": userID}})
	if err != nil {
		return "", fmt.Errorf("bookmark note: %w", err)
	}
	if res.MatchedCount == 0 {
		return "", domain.ErrNoteNotFound
	}
	return domain.Bookmarked, nil
}

func (r *NoteRepository) find(ctx context.Context, filter bson.M) ([]*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	defer cur.Close(ctx)

	notes := make([]*domain.Note, 0)
	for cur.Next(ctx) {
		var doc noteDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode note: %w", err)
		}
		notes = append(notes, doc.Note.Clone())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func visibleTo(userID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"shared_with": userID},
	}}
}
