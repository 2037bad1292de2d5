package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/feedback"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new feedback store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const feedbackColumns = "id, account_id, category, message, status, created_at"

// GetByID retrieves a Feedback entry by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Feedback, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+feedbackColumns+" FROM feedback WHERE id = ?", id)
	entity, err := scanFeedback(row)
	if err == sql.ErrNoRows {
		return domain.Feedback{}, fmt.Errorf("feedback not found: %w", err)
	}
	return entity, err
}

// Save persists a Feedback entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Feedback) error {
	var accountVal any
	if entity.AccountID != "" {
		accountVal = entity.AccountID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, account_id, category, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status`,
		entity.ID,
		accountVal,
		entity.Category,
		entity.Message,
		entity.Status,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// List retrieves feedback entries, newest first.
// PRE: none
// POST: Returns up to limit entities (all when limit <= 0)
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Feedback, error) {
	query := "SELECT " + feedbackColumns + " FROM feedback ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Feedback
	for rows.Next() {
		entity, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of feedback entries.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(scanner rowScanner) (domain.Feedback, error) {
	var entity domain.Feedback
	var accountID sql.NullString
	var createdStr string
	err := scanner.Scan(
		&entity.ID,
		&accountID,
		&entity.Category,
		&entity.Message,
		&entity.Status,
		&createdStr,
	)
	if err != nil {
		return domain.Feedback{}, err
	}
	entity.AccountID = accountID.String
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Feedback{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}
