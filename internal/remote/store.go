// Package remote implements the server-side store of record for review
// progress: one row per (user_id, question_id), shared by all devices of a
// user. The sync engine treats it as a peer of the local store, not a master.
package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/studybot/pkg/models"
)

// Store is the remote-side API the sync engine depends on.
type Store interface {
	// FetchAll returns every progress row belonging to userID.
	FetchAll(ctx context.Context, userID string) ([]models.RemoteRecord, error)
	// Upsert inserts or replaces the row for (user_id, question_id).
	Upsert(ctx context.Context, rec models.RemoteRecord) error
	// BatchUpsert upserts all records in one transaction.
	BatchUpsert(ctx context.Context, recs []models.RemoteRecord) error
}

// SQLStore implements Store on top of sqlx, against either SQLite or
// PostgreSQL depending on how it was opened.
type SQLStore struct {
	db *sqlx.DB
}

// Connect opens the remote store using environment configuration:
// DB_TYPE selects "sqlite" or "postgres" (default postgres), DATABASE_URL
// supplies the DSN. The sqlite fallback keeps single-host deployments and
// local development working without a server.
func Connect() (*SQLStore, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "postgres"
	}

	switch dbType {
	case "sqlite":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			dsn = filepath.Join(dataDir, "studybot.db")
		}
		return Open("sqlite3", dsn)
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		return Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// Open connects with an explicit driver ("sqlite3" or "postgres") and DSN and
// initializes the schema.
func Open(driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLStore{db: db}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// initializeSchema creates the progress table if it doesn't exist.
func (s *SQLStore) initializeSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS user_progress (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'learning',
			correct_count INTEGER NOT NULL DEFAULT 0,
			wrong_count INTEGER NOT NULL DEFAULT 0,
			last_reviewed TEXT NOT NULL DEFAULT '',
			easiness_factor REAL NOT NULL DEFAULT 2.5,
			interval INTEGER NOT NULL DEFAULT 1,
			repetition INTEGER NOT NULL DEFAULT 0,
			next_review TEXT NOT NULL DEFAULT '',
			UNIQUE(user_id, question_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_progress table: %w", err)
	}
	return nil
}

// FetchAll returns all progress rows for a user.
func (s *SQLStore) FetchAll(ctx context.Context, userID string) ([]models.RemoteRecord, error) {
	var recs []models.RemoteRecord
	err := s.db.SelectContext(ctx, &recs,
		"SELECT * FROM user_progress WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user progress: %w", err)
	}
	return recs, nil
}

const upsertQuery = `
	INSERT INTO user_progress (
		id, user_id, question_id, status, correct_count, wrong_count,
		last_reviewed, easiness_factor, interval, repetition, next_review
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (user_id, question_id) DO UPDATE SET
		status = EXCLUDED.status,
		correct_count = EXCLUDED.correct_count,
		wrong_count = EXCLUDED.wrong_count,
		last_reviewed = EXCLUDED.last_reviewed,
		easiness_factor = EXCLUDED.easiness_factor,
		interval = EXCLUDED.interval,
		repetition = EXCLUDED.repetition,
		next_review = EXCLUDED.next_review
`

// Upsert inserts or replaces the row for (user_id, question_id).
func (s *SQLStore) Upsert(ctx context.Context, rec models.RemoteRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, upsertQuery,
		rec.ID, rec.UserID, rec.QuestionID, rec.Status,
		rec.CorrectCount, rec.WrongCount, rec.LastReviewed,
		rec.EasinessFactor, rec.Interval, rec.Repetition, rec.NextReview,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress for question %s: %w", rec.QuestionID, err)
	}
	return nil
}

// BatchUpsert upserts all records in one transaction, so a merge push is
// applied remotely either completely or not at all.
func (s *SQLStore) BatchUpsert(ctx context.Context, recs []models.RemoteRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch upsert: %w", err)
	}
	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, upsertQuery,
			rec.ID, rec.UserID, rec.QuestionID, rec.Status,
			rec.CorrectCount, rec.WrongCount, rec.LastReviewed,
			rec.EasinessFactor, rec.Interval, rec.Repetition, rec.NextReview,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert progress for question %s: %w", rec.QuestionID, err)
		}
	}
	return tx.Commit()
}
