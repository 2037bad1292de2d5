package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"practicecraft/internal/adapters/storage"
	domain "practicecraft/internal/domain/session"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sessionColumns = "id, child_id, worksheet_id, correct_count, question_count, stars, created_at"

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM practice_session WHERE id = ?", id)
	entity, err := scanSession(row)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session not found: %w", err)
	}
	return entity, err
}

// Save persists a Session to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO practice_session (id, child_id, worksheet_id, correct_count, question_count, stars, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			correct_count=excluded.correct_count,
			question_count=excluded.question_count,
			stars=excluded.stars`,
		entity.ID,
		entity.ChildID,
		entity.WorksheetID,
		entity.CorrectCount,
		entity.QuestionCount,
		entity.Stars,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// ListByChild retrieves the full session history for a child, oldest first.
// PRE: childID is non-empty
// POST: Returns matching entities ordered by created_at
func (s *SQLiteStore) ListByChild(ctx context.Context, childID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM practice_session WHERE child_id = ? ORDER BY created_at", childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		entity, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetByWorksheet retrieves the session recorded for a worksheet, if any.
// PRE: worksheetID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByWorksheet(ctx context.Context, worksheetID string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM practice_session WHERE worksheet_id = ? ORDER BY created_at DESC LIMIT 1", worksheetID)
	entity, err := scanSession(row)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session not found: %w", err)
	}
	return entity, err
}

// Count returns the total number of sessions.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM practice_session").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(scanner rowScanner) (domain.Session, error) {
	var entity domain.Session
	var createdStr string
	err := scanner.Scan(
		&entity.ID,
		&entity.ChildID,
		&entity.WorksheetID,
		&entity.CorrectCount,
		&entity.QuestionCount,
		&entity.Stars,
		&createdStr,
	)
	if err != nil {
		return domain.Session{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}
