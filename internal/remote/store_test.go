package remote

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studybot/pkg/models"
)

func sqliteStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(userID, questionID, lastReviewed string) models.RemoteRecord {
	return models.RemoteRecord{
		UserID:         userID,
		QuestionID:     questionID,
		Status:         models.StatusLearning,
		CorrectCount:   1,
		WrongCount:     0,
		LastReviewed:   lastReviewed,
		EasinessFactor: 2.5,
		Interval:       1,
		Repetition:     1,
		NextReview:     "2026-03-05",
	}
}

func TestUpsertAndFetchAll(t *testing.T) {
	s := sqliteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, record("user-1", "qA", "2026-03-01T10:00:00Z")))
	require.NoError(t, s.Upsert(ctx, record("user-1", "qB", "2026-03-02T10:00:00Z")))
	require.NoError(t, s.Upsert(ctx, record("user-2", "qA", "2026-03-03T10:00:00Z")))

	recs, err := s.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "user-1", rec.UserID)
		assert.NotEmpty(t, rec.ID, "rows get generated ids")
	}
}

func TestFetchAllEmptyUser(t *testing.T) {
	s := sqliteStore(t)
	recs, err := s.FetchAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

// A second upsert for the same (user, question) replaces the row instead of
// creating a duplicate.
func TestUpsertConflictReplaces(t *testing.T) {
	s := sqliteStore(t)
	ctx := context.Background()

	first := record("user-1", "qA", "2026-03-01T10:00:00Z")
	require.NoError(t, s.Upsert(ctx, first))

	second := record("user-1", "qA", "2026-03-04T10:00:00Z")
	second.Repetition = 2
	second.Interval = 6
	require.NoError(t, s.Upsert(ctx, second))

	recs, err := s.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2026-03-04T10:00:00Z", recs[0].LastReviewed)
	assert.Equal(t, 2, recs[0].Repetition)
	assert.Equal(t, 6, recs[0].Interval)
}

func TestUpsertKeepsProvidedID(t *testing.T) {
	s := sqliteStore(t)
	ctx := context.Background()

	rec := record("user-1", "qA", "2026-03-01T10:00:00Z")
	rec.ID = "fixed-id"
	require.NoError(t, s.Upsert(ctx, rec))

	recs, err := s.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "fixed-id", recs[0].ID)
}

func TestBatchUpsert(t *testing.T) {
	s := sqliteStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchUpsert(ctx, []models.RemoteRecord{
		record("user-1", "qA", "2026-03-01T10:00:00Z"),
		record("user-1", "qB", "2026-03-02T10:00:00Z"),
		record("user-1", "qC", "2026-03-03T10:00:00Z"),
	}))

	recs, err := s.FetchAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestBatchUpsertEmpty(t *testing.T) {
	s := sqliteStore(t)
	assert.NoError(t, s.BatchUpsert(context.Background(), nil))
}

func TestOpenBadDriver(t *testing.T) {
	_, err := Open("nosuchdriver", "dsn")
	assert.Error(t, err)
}

// Runs the same surface against a real PostgreSQL instance when
// TEST_DATABASE_URL is set; skipped otherwise.
func TestPostgresIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	s, err := Open("postgres", dsn)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	userID := "integration-user"

	rec := record(userID, "qA", "2026-03-01T10:00:00Z")
	require.NoError(t, s.Upsert(ctx, rec))

	rec.Repetition = 3
	require.NoError(t, s.Upsert(ctx, rec))

	recs, err := s.FetchAll(ctx, userID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].Repetition)

	_, err = s.db.Exec("DELETE FROM user_progress WHERE user_id = $1", userID)
	require.NoError(t, err)
}
