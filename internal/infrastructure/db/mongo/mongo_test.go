package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quicknotes/notes-api/internal/core/domain"
	"github.com/quicknotes/notes-api/internal/core/ports"
	"github.com/quicknotes/notes-api/internal/infrastructure/db/memory"
)

var testClient *mongo.Client

// TestMain starts a throwaway MongoDB container. Without a reachable Docker
// daemon the integration tests in this package are skipped.
func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		fmt.Printf("Docker unavailable, skipping mongo integration tests: %s\n", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		fmt.Printf("Could not start resource: %s\n", err)
		os.Exit(1)
	}
	_ = resource.Expire(300)

	pool.MaxWait = 120 * time.Second
	if err := pool.Retry(func() error {
		client, _, err := Connect(context.Background(), Config{
			URI:      "mongodb://localhost:" + resource.GetPort("27017/tcp"),
			Database: "notes_test",
			Timeout:  5 * time.Second,
		})
		if err != nil {
			return err
		}
		testClient = client
		return nil
	}); err != nil {
		fmt.Printf("Could not connect to mongo: %s\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = testClient.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		fmt.Printf("Could not purge resource: %s\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// freshDB returns an empty database with indexes, unique to the calling test.
func freshDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testClient == nil {
		t.Skip("mongo container not available")
	}
	db := testClient.Database(fmt.Sprintf("notes_%d", time.Now().UnixNano()))
	require.NoError(t, EnsureIndexes(context.Background(), db))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(freshDB(t), memory.NewSequence())

	created, err := repo.Create(ctx, &domain.User{Email: "alice@x.com", Name: "Alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "user_id_1", created.ID)

	_, err = repo.Create(ctx, &domain.User{Email: "alice@x.com", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	byEmail, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	_, err = repo.FindByEmail(ctx, "ALICE@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestNoteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(freshDB(t), memory.NewSequence())

	first, err := repo.Create(ctx, &domain.Note{Title: "Groceries", Details: "milk", OwnerID: "user_id_1",
		SharedWith: []string{}, BookmarkedBy: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "note_id_1", first.ID)

	_, err = repo.Create(ctx, &domain.Note{Title: "Work", Details: "deploy", OwnerID: "user_id_2",
		SharedWith: []string{}, BookmarkedBy: []string{}})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Note{Title: "", Details: "x", OwnerID: "user_id_1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	visible, err := repo.ListVisibleTo(ctx, "user_id_1")
	require.NoError(t, err)
	require.Len(t, visible, 1)

	require.NoError(t, repo.AddShare(ctx, "note_id_2", "user_id_1"))
	require.NoError(t, repo.AddShare(ctx, "note_id_2", "user_id_1"))
	visible, err = repo.ListVisibleTo(ctx, "user_id_1")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, []string{"note_id_1", "note_id_2"}, []string{visible[0].ID, visible[1].ID})
	assert.Equal(t, []string{"user_id_1"}, visible[1].SharedWith)

	found, err := repo.SearchByTitle(ctx, "user_id_1", "GROC")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Groceries", found[0].Title)

	found, err = repo.SearchByTitle(ctx, "user_id_1", ".*")
	require.NoError(t, err)
	assert.Empty(t, found, "query must be matched literally")

	updated, err := repo.Update(ctx, "note_id_1", "", "milk, eggs")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Title)
	assert.Equal(t, "milk, eggs", updated.Details)
	assert.False(t, updated.UpdatedAt.Before(first.UpdatedAt.Truncate(time.Millisecond)))

	state, err := repo.ToggleBookmark(ctx, "note_id_1", "user_id_3")
	require.NoError(t, err)
	assert.Equal(t, domain.Bookmarked, state)
	state, err = repo.ToggleBookmark(ctx, "note_id_1", "user_id_3")
	require.NoError(t, err)
	assert.Equal(t, domain.Unbookmarked, state)

	require.NoError(t, repo.Delete(ctx, "note_id_1"))
	assert.ErrorIs(t, repo.Delete(ctx, "note_id_1"), domain.ErrNoteNotFound)
	_, err = repo.FindByID(ctx, "note_id_1")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepository_MissingNote(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(freshDB(t), memory.NewSequence())

	_, err := repo.Update(ctx, "note_id_9", "t", "d")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	assert.ErrorIs(t, repo.AddShare(ctx, "note_id_9", "user_id_1"), domain.ErrNoteNotFound)
	_, err = repo.ToggleBookmark(ctx, "note_id_9", "user_id_1")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestActivityRepository(t *testing.T) {
	ctx := context.Background()
	db := freshDB(t)
	repo := NewActivityRepository(db)

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.Record(ctx, ports.NoteActivity{NoteID: "note_id_1", UserID: "user_id_1", Action: ports.ActionCreated, At: at}))
	require.NoError(t, repo.Record(ctx, ports.NoteActivity{NoteID: "note_id_1", UserID: "user_id_1", Action: ports.ActionShared, Target: "user_id_2", At: at.Add(time.Second)}))

	cur, err := db.Collection(collectionActivity).Find(ctx, bson.M{"note_id": "note_id_1"},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	require.NoError(t, err)
	var got []bson.M
	require.NoError(t, cur.All(ctx, &got))
	require.Len(t, got, 2)
	assert.Equal(t, ports.ActionCreated, got[0]["action"])
	assert.NotContains(t, got[0], "target")
	assert.Equal(t, "user_id_2", got[1]["target"])

	require.NoError(t, Ping(db)(ctx))
}
